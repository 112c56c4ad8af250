package main

import (
	"flag"
	"fmt"
	"github.com/swdee/go-kittiklt/dataset"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"image/color"
	"log"
	"math"
)

// loadPoses reads the ground truth poses either from an explicit pose file
// or through the odometry benchmark layout
func loadPoses(posesFile, dataDir, sequence string) ([]*dataset.RigidTransform, error) {

	if posesFile != "" {
		return dataset.ReadPoses(posesFile)
	}

	reader, err := dataset.NewKITTIReader(dataset.KITTIConfig{
		Directory: dataDir,
		Sequence:  sequence,
	})

	if err != nil {
		return nil, err
	}

	poses := reader.Poses()

	if poses == nil {
		return nil, fmt.Errorf("sequence %s has no ground truth poses",
			sequence)
	}

	return poses, nil
}

// pathLength sums the distance travelled between consecutive poses
func pathLength(poses []*dataset.RigidTransform) float64 {

	total := 0.0

	for i := 1; i < len(poses); i++ {

		x0, y0, z0 := poses[i-1].Translation()
		x1, y1, z1 := poses[i].Translation()

		total += math.Sqrt((x1-x0)*(x1-x0) + (y1-y0)*(y1-y0) +
			(z1-z0)*(z1-z0))
	}

	return total
}

// plotTrajectory renders the birds eye view of the trajectory, the x-z
// plane of the camera frame, to a PNG file
func plotTrajectory(poses []*dataset.RigidTransform, title, outFile string) error {

	pts := make(plotter.XYs, len(poses))

	for i, pose := range poses {
		x, _, z := pose.Translation()
		pts[i].X = x
		pts[i].Y = z
	}

	line, err := plotter.NewLine(pts)

	if err != nil {
		return fmt.Errorf("error building trajectory line: %w", err)
	}

	line.Color = color.RGBA{B: 255, A: 255}
	line.Width = vg.Points(1.5)

	start, err := plotter.NewScatter(plotter.XYs{pts[0]})

	if err != nil {
		return fmt.Errorf("error building start marker: %w", err)
	}

	start.Color = color.RGBA{R: 255, A: 255}
	start.Radius = vg.Points(4)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"
	p.Add(plotter.NewGrid(), line, start)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, outFile); err != nil {
		return fmt.Errorf("error saving plot: %w", err)
	}

	return nil
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	dataDir := flag.String("d", "/data/kitti/odometry", "KITTI odometry benchmark root directory")
	sequence := flag.String("q", "00", "Odometry sequence to plot, 00 to 12")
	posesFile := flag.String("p", "", "Plot an explicit pose file instead of a benchmark sequence")
	outFile := flag.String("o", "kitti-trajectory.png", "The output PNG file of the trajectory plot")

	flag.Parse()

	poses, err := loadPoses(*posesFile, *dataDir, *sequence)

	if err != nil {
		log.Fatalf("Error loading poses: %v", err)
	}

	if len(poses) == 0 {
		log.Fatalf("Pose file contains no poses")
	}

	log.Printf("Loaded %d poses, path length %.1fm\n", len(poses),
		pathLength(poses))

	title := fmt.Sprintf("KITTI sequence %s trajectory", *sequence)

	if *posesFile != "" {
		title = "KITTI trajectory"
	}

	if err := plotTrajectory(poses, title, *outFile); err != nil {
		log.Fatalf("Error plotting trajectory: %v", err)
	}

	log.Printf("Trajectory plot written to %s\n", *outFile)
}
