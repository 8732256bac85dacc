package person

import "time"

type Person struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email,omitempty" yaml:"email"`
	IsAdmin  bool   `json:"is_admin" yaml:"admin"`
	IsOnline bool   `json:"is_online" yaml:"-"`
}

type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// Presence - запись в realtime-хранилище /status/{person_id}
type Presence struct {
	PersonID    string    `json:"person_id"`
	State       State     `json:"state"`
	LastChanged time.Time `json:"last_changed"`
}

func (p Presence) Online() bool {
	return p.State == StateOnline
}
