package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// GetTerminalID derives a stable register identifier from the machine's MAC
// address. It is stamped on every sale so multi-terminal stores can tell
// which register rang a transaction up.
func GetTerminalID() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "POS-UNKNOWN"
	}

	var macAddress string
	for _, i := range interfaces {
		// First active physical interface wins
		if i.Flags&net.FlagUp != 0 && len(i.HardwareAddr) > 0 {
			macAddress = i.HardwareAddr.String()
			break
		}
	}

	if macAddress == "" {
		return "POS-UNKNOWN"
	}

	hash := sha256.Sum256([]byte(macAddress + "POS-TERMINAL-SALT"))
	hashString := hex.EncodeToString(hash[:])

	return "POS-" + strings.ToUpper(hashString[:8])
}
