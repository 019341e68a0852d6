// Package settings owns the cached store configuration. The row is loaded
// once at startup, read synchronously everywhere, written only through
// Update, and every write is broadcast to subscribed components.
package settings

import (
	"log"
	"sync"

	"go-pos-checkout/internal/models"

	"gorm.io/gorm"
)

type Cache struct {
	db *gorm.DB

	mu      sync.RWMutex
	current models.Settings
	subs    map[chan models.Settings]struct{}
}

func NewCache(db *gorm.DB) *Cache {
	return &Cache{db: db, subs: make(map[chan models.Settings]struct{})}
}

// Load fetches the settings row, creating the defaults on first boot.
func (c *Cache) Load() error {
	var s models.Settings
	err := c.db.First(&s).Error
	if err == gorm.ErrRecordNotFound {
		s = models.Settings{
			TaxRate:         7,
			PointsPerAmount: 100, // 100 baht spent = 1 point
			PointValue:      1,   // 1 point = 1 baht off
			CashEnabled:     true,
		}
		if err := c.db.Create(&s).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	return nil
}

// Current is the synchronous read every component uses. Returns a copy.
func (c *Cache) Current() models.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Update applies a partial update, persists it, refreshes the cache and
// notifies subscribers.
func (c *Cache) Update(in UpdateInput) (models.Settings, error) {
	c.mu.Lock()
	s := c.current
	in.apply(&s)
	if err := c.db.Save(&s).Error; err != nil {
		c.mu.Unlock()
		return models.Settings{}, err
	}
	c.current = s
	subs := make([]chan models.Settings, 0, len(c.subs))
	for ch := range c.subs {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
			// A subscriber that stopped draining loses the tick; it will
			// still read the fresh value through Current().
			log.Println("settings: dropped change notification for slow subscriber")
		}
	}
	return s, nil
}

// SetLogoURL persists just the uploaded logo location.
func (c *Cache) SetLogoURL(url string) error {
	_, err := c.Update(UpdateInput{LogoURL: &url})
	return err
}

// Subscribe registers a listener for settings changes. Components subscribe
// for their lifetime and must call Unsubscribe on teardown.
func (c *Cache) Subscribe() chan models.Settings {
	ch := make(chan models.Settings, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

func (c *Cache) Unsubscribe(ch chan models.Settings) {
	c.mu.Lock()
	delete(c.subs, ch)
	c.mu.Unlock()
	close(ch)
}
