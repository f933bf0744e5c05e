package dto

// Response is the envelope every endpoint answers with. Payload fields are
// merged into the top-level object next to success and message.
type Response map[string]any

func Fail(message string) Response {
	return Response{"success": false, "message": message}
}

func OK(message string) Response {
	r := Response{"success": true}
	if message != "" {
		r["message"] = message
	}
	return r
}

// With adds a payload field and returns the same envelope.
func (r Response) With(key string, value any) Response {
	r[key] = value
	return r
}
