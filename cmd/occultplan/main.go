package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/signalsfoundry/occultation-planner/catalog"
	"github.com/signalsfoundry/occultation-planner/core"
	"github.com/signalsfoundry/occultation-planner/internal/logging"
	"github.com/signalsfoundry/occultation-planner/internal/plan"
	"github.com/signalsfoundry/occultation-planner/playback"
)

func main() {
	catalogPath := flag.String("catalog", "", "optional JSON catalog of stars, cameras, bodies and scenarios")
	scenarioID := flag.String("scenario", "", "evaluate a stored scenario by ID (requires -catalog)")

	starRadius := flag.Float64("star-radius", 0, "stellar radius in solar radii")
	distance := flag.Float64("distance", 0, "distance to the star in parsecs")
	angularMas := flag.Float64("angular-mas", 0, "directly supplied angular diameter in milliarcseconds")

	frameRate := flag.Float64("frame-rate", 450, "camera frame rate in Hz")
	limbArcsec := flag.Float64("limb-velocity", 0, "direct limb velocity in arcsec/s (overrides the lunar closed form)")
	grazing := flag.Float64("grazing", 1.0, "grazing factor in (0, 1] applied to the lunar mean limb rate")

	survey := flag.Bool("survey", false, "sweep a radius x distance grid instead of a single evaluation")
	radiusMin := flag.Float64("radius-min", 0.1, "survey: minimum stellar radius in solar radii")
	radiusMax := flag.Float64("radius-max", 30, "survey: maximum stellar radius in solar radii")
	radiusSteps := flag.Int("radius-steps", 10, "survey: number of radius grid points")
	distanceMin := flag.Float64("distance-min", 1, "survey: minimum distance in parsecs")
	distanceMax := flag.Float64("distance-max", 100, "survey: maximum distance in parsecs")
	distanceSteps := flag.Int("distance-steps", 10, "survey: number of distance grid points")
	asCSV := flag.Bool("csv", false, "survey: emit CSV instead of the aligned table")

	replay := flag.Bool("playback", false, "replay the predicted frames after evaluating")
	accelerated := flag.Bool("accelerated", true, "playback: run accelerated (vs real frame cadence)")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cat := catalog.New()
	if *catalogPath != "" {
		loadCatalog(cat, *catalogPath)
	}
	planner := plan.New(cat, plan.WithLogger(log))

	timing := plan.Timing{
		FrameRateHz:      *frameRate,
		LimbArcsecPerSec: *limbArcsec,
		GrazingFactor:    *grazing,
	}

	if *survey {
		runSurvey(ctx, planner, plan.SurveyRequest{
			RadiiSolar:      core.Span{Min: *radiusMin, Max: *radiusMax, Steps: *radiusSteps},
			DistancesParsec: core.Span{Min: *distanceMin, Max: *distanceMax, Steps: *distanceSteps},
			Timing:          timing,
		}, *asCSV)
		return
	}

	var (
		a   *plan.Assessment
		err error
	)
	if *scenarioID != "" {
		a, err = planner.EvaluateScenario(ctx, *scenarioID)
	} else {
		a, err = planner.Evaluate(ctx, plan.Request{
			Target: plan.Target{
				RadiusSolar:        *starRadius,
				DistanceParsec:     *distance,
				AngularDiameterMas: *angularMas,
			},
			Timing: timing,
		})
	}
	if err != nil {
		fatalf("evaluation failed: %v", err)
	}

	printAssessment(a)

	if *replay {
		mode := playback.RealTime
		if *accelerated {
			mode = playback.Accelerated
		}
		runPlayback(a, mode)
	}
}

func printAssessment(a *plan.Assessment) {
	fmt.Printf("Angular diameter: %.4f mas\n", a.AngularDiameterMas)
	fmt.Printf("Limb velocity:    %.4f arcsec/s\n", a.LimbArcsecPerSec)
	fmt.Printf("Partial phase:    %.3f ms\n", a.DurationSec*1000)
	fmt.Printf("Frames inside:    %d\n", a.FrameCount)
	fmt.Printf("Verdict:          %s\n", a.Verdict)
	if a.RecoveredRadiusSolar > 0 {
		fmt.Printf("Recovered radius: %.4f solRad\n", a.RecoveredRadiusSolar)
	}
}

func runSurvey(ctx context.Context, planner *plan.Planner, req plan.SurveyRequest, asCSV bool) {
	result, err := planner.Survey(ctx, req)
	if err != nil {
		fatalf("survey failed: %v", err)
	}

	if asCSV {
		w := csv.NewWriter(os.Stdout)
		_ = w.Write([]string{"radius_solar", "distance_parsec", "angular_mas", "duration_ms", "frames", "verdict"})
		for _, row := range result.Rows {
			_ = w.Write([]string{
				strconv.FormatFloat(row.RadiusSolar, 'g', -1, 64),
				strconv.FormatFloat(row.DistanceParsec, 'g', -1, 64),
				strconv.FormatFloat(row.AngularDiameterMas, 'g', -1, 64),
				strconv.FormatFloat(row.DurationSec*1000, 'g', -1, 64),
				strconv.Itoa(row.FrameCount),
				row.Verdict.String(),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			fatalf("write CSV: %v", err)
		}
		return
	}

	fmt.Printf("%10s %12s %12s %12s %8s %-12s\n",
		"r [solRad]", "d [pc]", "theta [mas]", "phase [ms]", "frames", "verdict")
	for _, row := range result.Rows {
		fmt.Printf("%10.2f %12.2f %12.4f %12.3f %8d %-12s\n",
			row.RadiusSolar, row.DistanceParsec, row.AngularDiameterMas,
			row.DurationSec*1000, row.FrameCount, row.Verdict)
	}
	fmt.Printf("\n%d cells: %d resolvable, %d marginal, %d unresolvable\n",
		len(result.Rows),
		result.Counts[core.VerdictResolvable],
		result.Counts[core.VerdictMarginal],
		result.Counts[core.VerdictUnresolvable],
	)
}

func runPlayback(a *plan.Assessment, mode playback.Mode) {
	if a.FramePeriodSec <= 0 {
		fatalf("playback needs a positive frame period")
	}
	// Replay at the cadence the assessment was computed with, which for
	// scenarios is the catalog camera's rate rather than the flag.
	player := playback.NewPlayer(a.DurationSec, a.FramePeriodSec, mode)
	player.AddListener(func(f playback.Frame) {
		fmt.Printf("frame %3d  t=%8.3f ms  flux=%.4f\n", f.Index, f.TimeSec*1000, f.Flux)
	})

	done, err := player.Start()
	if err != nil {
		fatalf("playback failed: %v", err)
	}
	<-done
	fmt.Println("Playback complete.")
}

func loadCatalog(cat *catalog.Catalog, path string) {
	f, err := os.Open(path)
	if err != nil {
		fatalf("open catalog %q: %v", path, err)
	}
	defer f.Close()

	if _, err := catalog.Load(cat, f); err != nil {
		fatalf("load catalog %q: %v", path, err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
