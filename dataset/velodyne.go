package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// veloPointSize is the packed byte size of one velodyne return, four
// little endian float32 values
const veloPointSize = 16

// VeloPoint is a single velodyne return
type VeloPoint struct {
	// X, Y and Z are the position in the velodyne frame in meters, x
	// forward, y left, z up
	X float32
	Y float32
	Z float32
	// Reflectance is the measured return intensity
	Reflectance float32
}

// ReadVelodyne loads a KITTI velodyne scan, a packed stream of x, y, z,
// reflectance records.  A file size that is not a whole number of records
// is reported as a truncated scan.
func ReadVelodyne(path string) ([]VeloPoint, error) {

	buf, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading velodyne scan: %w", err)
	}

	if len(buf)%veloPointSize != 0 {
		return nil, fmt.Errorf("velodyne scan %s truncated at %d bytes",
			path, len(buf))
	}

	pts := make([]VeloPoint, len(buf)/veloPointSize)

	for i := range pts {

		off := i * veloPointSize

		pts[i] = VeloPoint{
			X:           math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])),
			Y:           math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])),
			Z:           math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:])),
			Reflectance: math.Float32frombits(binary.LittleEndian.Uint32(buf[off+12:])),
		}
	}

	return pts, nil
}

// WriteVelodyne writes points to path in the packed KITTI scan format
func WriteVelodyne(path string, pts []VeloPoint) error {

	buf := make([]byte, len(pts)*veloPointSize)

	for i, pt := range pts {

		off := i * veloPointSize

		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(pt.X))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(pt.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(pt.Z))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(pt.Reflectance))
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("writing velodyne scan: %w", err)
	}

	return nil
}
