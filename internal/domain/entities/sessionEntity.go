package entities

import "time"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Answer is one recorded dialogue answer. Answers are kept as an ordered
// slice so the record preserves collection order.
type Answer struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DialogueState tracks where a user is inside one dialogue script.
// Invariant: 0 <= Step <= schema length; Answers holds exactly Step entries.
type DialogueState struct {
	Variant string   `json:"variant"`
	Step    int      `json:"step"`
	Answers []Answer `json:"answers"`
}

// Awaiting returns the field the user still has to answer, or false when the
// dialogue is complete.
func (d *DialogueState) Awaiting() (Field, bool) {
	schema, ok := SchemaByName(d.Variant)
	if !ok || d.Step >= schema.Len() {
		return Field{}, false
	}
	return schema.Fields[d.Step], true
}

func (d *DialogueState) Complete() bool {
	schema, ok := SchemaByName(d.Variant)
	return ok && d.Step == schema.Len()
}

// Session is the per-user conversational state. The dialogue part is removed
// once a record has been submitted and answered; the last shared location
// survives a dialogue reset so the location flow can be retried.
type Session struct {
	Dialogue  *DialogueState `json:"dialogue,omitempty"`
	Location  *Coordinates   `json:"location,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
