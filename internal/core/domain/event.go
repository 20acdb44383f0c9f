package domain

import "time"

type SearchEvent struct {
	SessionID  string
	Predicates Predicates
	Results    int
	At         time.Time
}
