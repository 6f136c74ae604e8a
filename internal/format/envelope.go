package format

import "strings"

// DefaultCategory is used when an Envelope carries no category.
const DefaultCategory = "paket"

// Envelope is the key=value response wrapper understood by the SMS gateway.
type Envelope struct {
	TrxID    string
	To       string
	Category string
}

// Success renders
//
//	trxid=<id>&to=<to>&status=success&message=listpaket in <category> : <serialized>
func (e Envelope) Success(serialized string) string {
	cat := strings.TrimSpace(e.Category)
	if cat == "" {
		cat = DefaultCategory
	}
	return e.head("success") + "listpaket in " + cat + " : " + serialized
}

// Failure renders trxid=<id>&to=<to>&status=failed&message=<reason>.
func (e Envelope) Failure(reason string) string {
	return e.head("failed") + reason
}

func (e Envelope) head(status string) string {
	return "trxid=" + e.TrxID + "&to=" + e.To + "&status=" + status + "&message="
}
