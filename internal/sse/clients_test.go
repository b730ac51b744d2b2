package sse

import (
	"testing"
)

func receive(c *Client) (string, bool) {
	select {
	case msg := <-c.Msg:
		return msg, true
	default:
		return "", false
	}
}

func TestBroadcast(t *testing.T) {
	clients := NewClients()

	root := NewClient("/")
	about := NewClient("/about/")
	all := NewClient("")
	for _, c := range []*Client{root, about, all} {
		clients.Add(c)
	}

	if clients.Len() != 3 {
		t.Fatalf("Expected 3 clients, got %d", clients.Len())
	}

	t.Run("Page scoped", func(t *testing.T) {
		clients.Broadcast("/", "reload")

		if msg, ok := receive(root); !ok || msg != "reload" {
			t.Errorf("Expected root subscriber to receive reload, got %q %v", msg, ok)
		}
		if _, ok := receive(about); ok {
			t.Error("Expected other page subscriber to receive nothing")
		}
		if _, ok := receive(all); !ok {
			t.Error("Expected wildcard subscriber to receive the message")
		}
	})

	t.Run("Everyone", func(t *testing.T) {
		clients.Broadcast("", "reload")
		for _, c := range []*Client{root, about, all} {
			if _, ok := receive(c); !ok {
				t.Errorf("Expected %q subscriber to receive the message", c.Page)
			}
		}
	})

	t.Run("Full buffer does not block", func(t *testing.T) {
		clients.Broadcast("", "first")
		clients.Broadcast("", "second")

		if msg, _ := receive(root); msg != "first" {
			t.Errorf("Expected the buffered message, got %q", msg)
		}
	})
}

func TestDelete(t *testing.T) {
	clients := NewClients()
	c := NewClient("/")
	clients.Add(c)

	clients.Delete(c)
	clients.Delete(c)

	if clients.Len() != 0 {
		t.Errorf("Expected no clients, got %d", clients.Len())
	}
	if _, open := <-c.Msg; open {
		t.Error("Expected the message channel to be closed")
	}
}
