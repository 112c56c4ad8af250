package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OXTS holds one GPS/IMU record from a raw drive, pairing the field names
// declared by the drive's dataformat file with the values of one frame
type OXTS struct {
	// Names lists the record fields in file order
	Names []string
	// Values holds the reading of each named field
	Values []float64
}

// Get returns the named field value, or false when the record does not
// carry it
func (o *OXTS) Get(name string) (float64, bool) {

	for i, n := range o.Names {
		if n == name && i < len(o.Values) {
			return o.Values[i], true
		}
	}

	return 0, false
}

// LatLonAlt returns the position fields of the record.  Fields the record
// does not carry are zero.
func (o *OXTS) LatLonAlt() (lat, lon, alt float64) {
	lat, _ = o.Get("lat")
	lon, _ = o.Get("lon")
	alt, _ = o.Get("alt")
	return lat, lon, alt
}

// ReadOXTSFormat reads a raw drive dataformat file and returns the record
// field names, the text before the first colon of each line
func ReadOXTSFormat(path string) ([]string, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("opening oxts format: %w", err)
	}

	defer f.Close()

	var names []string

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		name, _, _ := strings.Cut(line, ":")
		names = append(names, strings.TrimSpace(name))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading oxts format: %w", err)
	}

	return names, nil
}

// ReadOXTS reads one GPS/IMU record, pairing its space separated values
// with the given field names
func ReadOXTS(path string, names []string) (*OXTS, error) {

	buf, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading oxts record: %w", err)
	}

	fields := strings.Fields(string(buf))
	vals := make([]float64, len(fields))

	for i, field := range fields {

		v, err := strconv.ParseFloat(field, 64)

		if err != nil {
			return nil, fmt.Errorf("oxts record %s field %d: %w", path, i, err)
		}

		vals[i] = v
	}

	return &OXTS{Names: names, Values: vals}, nil
}
