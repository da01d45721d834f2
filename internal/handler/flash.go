package handler

// Flash is the outcome payload the back-office UI renders as a flash message.
// Timer is nil for messages that must stay on screen, such as the one-time
// generated password.
type Flash struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Timer *int   `json:"timer"`
}

const flashTimerMillis = 5000

func successFlash(text string) Flash {
	timer := flashTimerMillis
	return Flash{Type: "success", Text: text, Timer: &timer}
}

// stickySuccessFlash is a success message without auto-dismiss.
func stickySuccessFlash(text string) Flash {
	return Flash{Type: "success", Text: text}
}

func errorFlash(text string) Flash {
	return Flash{Type: "error", Text: text}
}
