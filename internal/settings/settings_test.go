package settings

import "testing"

func TestSubscribeUnsubscribe(t *testing.T) {
	c := NewCache(nil)

	ch := c.Subscribe()
	c.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}
}

func TestSubscribersAreIndependent(t *testing.T) {
	c := NewCache(nil)

	a := c.Subscribe()
	b := c.Subscribe()

	c.Unsubscribe(a)

	// b is still registered and open
	select {
	case _, ok := <-b:
		if !ok {
			t.Error("unsubscribing one listener closed another")
		}
	default:
	}
	c.Unsubscribe(b)
}
