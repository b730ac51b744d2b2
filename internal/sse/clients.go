// Package sse tracks Server-Sent Events subscribers of the preview server.
package sse

import (
	"sync"
)

// Client receives events for one page. An empty Page subscribes to every page.
type Client struct {
	Msg  chan string
	Page string
}

func NewClient(page string) *Client {
	return &Client{Msg: make(chan string, 1), Page: page}
}

type Clients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewClients() *Clients {
	return &Clients{
		clients: make(map[*Client]bool),
	}
}

func (s *Clients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *Clients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *Clients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to the subscribers of page, or to everyone when page is empty.
// Slow clients miss the message rather than block the sender.
func (s *Clients) Broadcast(page, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if page != "" && client.Page != "" && client.Page != page {
			continue
		}
		select {
		case client.Msg <- msg:
		default:
		}
	}
}
