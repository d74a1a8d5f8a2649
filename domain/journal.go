package domain

import "time"

// Transition represents a singleton slot state change persisted by the journal
type Transition struct {
	ID         int        `sqlx:"name=ID,primaryKey=true,generator=autoincrement"`
	Ip         string     `sqlx:"IP"`
	Kind       string     `sqlx:"KIND"`
	Name       string     `sqlx:"NAME"`
	FromState  string     `sqlx:"FROM_STATE"`
	ToState    string     `sqlx:"TO_STATE"`
	InstanceID string     `sqlx:"INSTANCE_ID"`
	Error      string     `sqlx:"ERROR"`
	Created    *time.Time `sqlx:"CREATED"`
}
