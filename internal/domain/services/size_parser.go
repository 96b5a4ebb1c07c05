package services

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/avrforge/sketchforge/internal/domain/build"
)

// SizeParser reads the output of the size tool in either Berkeley format:
//
//	text	   data	    bss	    dec	    hex	filename
//	 924	      0	      9	    933	    3a5	sketch.cpp.elf
//
// or the AVR format printed by avr-size -C:
//
//	AVR Memory Usage
//	----------------
//	Device: atmega328p
//
//	Program:     934 bytes (2.9% Full)
//	Data:         19 bytes (0.9% Full)
//	EEPROM:        4 bytes (0.4% Full)
type SizeParser struct{}

var avrSizeLine = regexp.MustCompile(`^(Program|Data|EEPROM):\s+(\d+)\s+bytes`)

// NewSizeParser creates a new size parser
func NewSizeParser() *SizeParser {
	return &SizeParser{}
}

// Parse returns the section sizes. Unparseable output yields a report
// with only Raw set; it is never an error.
func (p *SizeParser) Parse(output string) build.SizeReport {
	report := build.SizeReport{Raw: strings.TrimSpace(output)}
	if p.parseBerkeley(output, &report) {
		return report
	}
	p.parseAVR(output, &report)
	return report
}

func (p *SizeParser) parseBerkeley(output string, report *build.SizeReport) bool {
	sc := bufio.NewScanner(strings.NewReader(output))
	headerSeen := false
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		if fields[0] == "text" {
			headerSeen = true
			continue
		}
		if !headerSeen {
			continue
		}

		nums := make([]uint64, 4)
		ok := true
		for i := 0; i < 4; i++ {
			n, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				ok = false
				break
			}
			nums[i] = n
		}
		if !ok {
			continue
		}
		report.Text, report.Data, report.BSS, report.Total = nums[0], nums[1], nums[2], nums[3]
		return true
	}
	return false
}

// parseAVR reads the per-memory totals. The AVR format does not split .data
// out of either total, so program memory lands in Text and data memory in
// BSS; Flash and RAM stay exact.
func (p *SizeParser) parseAVR(output string, report *build.SizeReport) bool {
	found := false
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if device, ok := strings.CutPrefix(line, "Device:"); ok {
			report.Device = strings.TrimSpace(device)
			continue
		}
		m := avrSizeLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			continue
		}
		found = true
		switch m[1] {
		case "Program":
			report.Text = n
		case "Data":
			report.BSS = n
		case "EEPROM":
			report.EEPROM = n
		}
	}
	if found {
		report.Total = report.Text + report.BSS
	}
	return found
}
