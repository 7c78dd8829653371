package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tylorschafer/Pulse/audio"
	"github.com/tylorschafer/Pulse/haptic"
	"github.com/tylorschafer/Pulse/log"
	"github.com/tylorschafer/Pulse/metronome"
	"github.com/tylorschafer/Pulse/settings"
)

var version = "dev"

var (
	flagBPM       = flag.Int("bpm", 0, "tempo in BPM (overrides saved settings)")
	flagBeats     = flag.Int("beats", 0, "beats per measure (overrides saved settings)")
	flagVolume    = flag.Float64("vol", -1, "volume 0..1 (overrides saved settings)")
	flagNoAccent  = flag.Bool("noaccent", false, "disable the downbeat accent")
	flagNoHaptics = flag.Bool("nohaptics", false, "disable haptic pulses")
	flagNoTUI     = flag.Bool("notui", false, "run without the TUI")
	flagDevice    = flag.Bool("device", false, "select the output device interactively")
	flagLogPath   = flag.String("logpath", "", "log directory")
	flagVersion   = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()
	if *flagVersion {
		fmt.Println("pulse", version)
		return
	}

	logDir, err := log.ResolveDir(*flagLogPath)
	if err == nil {
		log.SetDir(logDir)
		if err := log.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "log init: %v\n", err)
		}
	}
	defer log.Close()

	cfg, err := settings.Load()
	if err != nil {
		log.Warnf("loading settings: %v", err)
	}
	applyFlags(&cfg)

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "audio: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var device *audio.DeviceInfo
	if *flagDevice {
		device, err = audio.SelectDevice(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "selecting device: %v\n", err)
			os.Exit(1)
		}
	}

	backend, err := haptic.NewRumble()
	if err != nil {
		log.Warnf("haptics unavailable: %v", err)
	}
	haptics := haptic.NewDispatcher(backend, haptic.Config{
		Policy:       haptic.Continuous,
		DownbeatOnly: cfg.HapticsDownbeatOnly,
	})
	haptics.SetEnabled(cfg.HapticsEnabled && !*flagNoHaptics)
	defer haptics.Close()

	engine := metronome.New(ctx, haptics)
	engine.SetDevice(device)

	if *flagNoTUI {
		runConsole(engine, newConsoleSink(os.Stdout, cfg.BeatsPerMeasure), cfg)
		return
	}
	runTUI(engine, haptics, cfg)
}

func applyFlags(cfg *settings.Settings) {
	if *flagBPM > 0 {
		cfg.Tempo = *flagBPM
	}
	if *flagBeats > 0 {
		cfg.BeatsPerMeasure = *flagBeats
	}
	if *flagVolume >= 0 {
		cfg.Volume = *flagVolume
	}
	if *flagNoAccent {
		cfg.AccentFirstBeat = false
	}
	cfg.Clamp()
}

func engineSettings(cfg settings.Settings) metronome.Settings {
	return metronome.Settings{
		Tempo:           cfg.Tempo,
		BeatsPerMeasure: cfg.BeatsPerMeasure,
		AccentFirstBeat: cfg.AccentFirstBeat,
		Volume:          cfg.Volume,
	}
}

func runConsole(engine *metronome.Engine, sink BeatSink, cfg settings.Settings) {
	engine.SetObserver(sink.Beat)
	if err := engine.Start(engineSettings(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	sink.PlayState(true)
	fmt.Printf("pulse: %d BPM, %d/4 (ctrl+c to stop)\n", cfg.Tempo, cfg.BeatsPerMeasure)

	// OS interruptions map onto a plain engine stop; playback never
	// auto-resumes.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	engine.Stop()
	sink.PlayState(false)
	if err := cfg.Save(); err != nil {
		log.Warnf("saving settings: %v", err)
	}
}
