package build

// SizeReport is the section breakdown of the linked executable in bytes.
// Field names are what size_check expressions refer to.
type SizeReport struct {
	Text  uint64 `json:"text" yaml:"text" expr:"text"`
	Data  uint64 `json:"data" yaml:"data" expr:"data"`
	BSS   uint64 `json:"bss" yaml:"bss" expr:"bss"`
	Total uint64 `json:"total" yaml:"total" expr:"total"`
	// EEPROM and Device are only reported in AVR format.
	EEPROM uint64 `json:"eeprom,omitempty" yaml:"eeprom,omitempty" expr:"eeprom"`
	Device string `json:"device,omitempty" yaml:"device,omitempty" expr:"device"`
	// Raw keeps the tool output, which is all there is when parsing fails.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Flash is the program-memory footprint (text + data).
func (s SizeReport) Flash() uint64 {
	return s.Text + s.Data
}

// RAM is the static data-memory footprint (data + bss).
func (s SizeReport) RAM() uint64 {
	return s.Data + s.BSS
}

// Parsed reports whether any section size was recovered.
func (s SizeReport) Parsed() bool {
	return s.Total > 0 || s.Text > 0 || s.Data > 0 || s.BSS > 0 || s.EEPROM > 0
}
