package model

// All lists every table owned by the app, in dependency order.
func All() []interface{} {
	return []interface{}{
		&CalendarEvent{},
		&Session{},
		&Human{},
		&SessionParticipant{},
		&ChatGroup{},
		&ChatMessage{},
		&UserConfig{},
		&License{},
	}
}
