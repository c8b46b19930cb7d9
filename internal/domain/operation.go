package domain

type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
)

// Past returns the verb used in client-facing messages ("inserted", "updated").
func (o Operation) Past() string {
	switch o {
	case OpInsert:
		return "inserted"
	case OpUpdate:
		return "updated"
	default:
		return string(o)
	}
}
