package entities

import "fmt"

type ValidatorKind string

const (
	KindDate   ValidatorKind = "date"
	KindNumber ValidatorKind = "number"
)

// Field is one step of a dialogue script: the question asked, the key the
// answer is recorded under, and how the answer is validated.
type Field struct {
	Key    string
	Prompt string
	Kind   ValidatorKind
}

// Schema is an ordered dialogue script. Schemas are defined once at process
// start and never change afterwards.
type Schema struct {
	Name   string
	Fields []Field
}

func (s Schema) Len() int {
	return len(s.Fields)
}

// Validate checks the script shape once at startup: every field needs a key
// and a prompt, keys must be unique, and the validator kind must be known.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %q has no fields", s.Name)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for i, field := range s.Fields {
		if field.Key == "" || field.Prompt == "" {
			return fmt.Errorf("schema %q: field %d is missing key or prompt", s.Name, i)
		}
		if field.Kind != KindDate && field.Kind != KindNumber {
			return fmt.Errorf("schema %q: field %q has unknown validator kind %q", s.Name, field.Key, field.Kind)
		}
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("schema %q: duplicate field key %q", s.Name, field.Key)
		}
		seen[field.Key] = struct{}{}
	}
	return nil
}

const (
	// SchemaFull collects a complete record: harvest date, plantation facts
	// and the full set of weather readings.
	SchemaFull = "full"
	// SchemaWeather collects only the ten numeric weather readings.
	SchemaWeather = "weather"
)

var weatherFields = []Field{
	{Key: "MaxWind", Prompt: "กรุณากรอกความเร็วลมสูงสุด (กม./ชม.)", Kind: KindNumber},
	{Key: "AvgWind", Prompt: "กรุณากรอกความเร็วลมเฉลี่ย (กม./ชม.)", Kind: KindNumber},
	{Key: "MinWind", Prompt: "กรุณากรอกความเร็วลมต่ำสุด (กม./ชม.)", Kind: KindNumber},
	{Key: "MaxTemp", Prompt: "กรุณากรอกอุณหภูมิสูงสุด (องศาเซลเซียส)", Kind: KindNumber},
	{Key: "AvgTemp", Prompt: "กรุณากรอกอุณหภูมิเฉลี่ย (องศาเซลเซียส)", Kind: KindNumber},
	{Key: "MinTemp", Prompt: "กรุณากรอกอุณหภูมิต่ำสุด (องศาเซลเซียส)", Kind: KindNumber},
	{Key: "MaxHumidity", Prompt: "กรุณากรอกความชื้นสัมพัทธ์สูงสุด (%)", Kind: KindNumber},
	{Key: "AvgHumidity", Prompt: "กรุณากรอกความชื้นสัมพัทธ์เฉลี่ย (%)", Kind: KindNumber},
	{Key: "MinHumidity", Prompt: "กรุณากรอกความชื้นสัมพัทธ์ต่ำสุด (%)", Kind: KindNumber},
	{Key: "Precipitation", Prompt: "กรุณากรอกปริมาณน้ำฝน (มม.)", Kind: KindNumber},
}

func FullSchema() Schema {
	fields := []Field{
		{Key: "Date", Prompt: "กรุณากรอกวันที่เก็บข้อมูล (MM/DD/YYYY)", Kind: KindDate},
		{Key: "Age", Prompt: "กรุณากรอกอายุต้นยาง (ปี)", Kind: KindNumber},
		{Key: "Area", Prompt: "กรุณากรอกขนาดพื้นที่สวนยาง (ไร่)", Kind: KindNumber},
	}
	fields = append(fields, weatherFields...)
	return Schema{Name: SchemaFull, Fields: fields}
}

func WeatherSchema() Schema {
	fields := make([]Field, len(weatherFields))
	copy(fields, weatherFields)
	return Schema{Name: SchemaWeather, Fields: fields}
}

// SchemaByName resolves a stored variant name back to its script.
func SchemaByName(name string) (Schema, bool) {
	switch name {
	case SchemaFull:
		return FullSchema(), true
	case SchemaWeather:
		return WeatherSchema(), true
	}
	return Schema{}, false
}
