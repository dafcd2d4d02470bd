package whatsapp

// Job is the JSON payload put on the RabbitMQ queue for WhatsApp delivery.
// The worker consumes it and calls the Fonnte gateway.
type Job struct {
	Target  string `json:"target"`  // normalized 62-prefixed phone number
	Message string `json:"message"` // full message text including the OTP code
}
