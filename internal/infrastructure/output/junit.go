package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/avrforge/sketchforge/internal/domain/build"
)

// JUnitFormatter formats build reports as JUnit XML, one test case per
// toolchain invocation.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

// Format writes the build report as JUnit XML. Diagnostic output is a
// failure; a tool that did not run is an error. A failed build with no
// failing invocation (e.g. missing objects) gets one extra error case.
func (f *JUnitFormatter) Format(report *build.Report) error {
	suite := JUnitTestSuite{
		Name: report.Sketch,
		Time: report.Duration.Seconds(),
	}

	for _, inv := range report.Invocations {
		name := inv.Unit
		if name == "" {
			name = inv.Tool
		}
		c := JUnitTestCase{
			Name:      name,
			ClassName: string(inv.Stage),
			Time:      inv.Duration.Seconds(),
		}

		switch {
		case inv.Err != "":
			c.Error = &JUnitError{Message: inv.Err, Content: inv.Output}
			suite.Errors++
		case inv.Failed():
			c.Failure = &JUnitFailure{Message: firstLine(inv.Output), Content: inv.Output}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, c)
	}

	if !report.Succeeded() && suite.Errors+suite.Failures == 0 {
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      "build",
			ClassName: string(report.State),
			Error: &JUnitError{
				Message: "build failed",
				Content: strings.Join(report.Errors, "\n"),
			},
		})
		suite.Errors++
	}
	suite.Tests = len(suite.TestCases)

	suites := JUnitTestSuites{
		Name:       fmt.Sprintf("sketchforge build %s", report.ID),
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
