// This file is part of Panelpipe.
//
// Panelpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Panelpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Panelpipe.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/panelpipe/panelpipe/digest"
	"github.com/panelpipe/panelpipe/display"
	"github.com/panelpipe/panelpipe/display/specification"
	"github.com/panelpipe/panelpipe/emulation"
	"github.com/panelpipe/panelpipe/emulation/testcard"
	"github.com/panelpipe/panelpipe/input"
	"github.com/panelpipe/panelpipe/input/macro"
	"github.com/panelpipe/panelpipe/logger"
	"github.com/panelpipe/panelpipe/modalflag"
	"github.com/panelpipe/panelpipe/paths"
	"github.com/panelpipe/panelpipe/performance"
	"github.com/panelpipe/panelpipe/pipeline"
	"github.com/panelpipe/panelpipe/preferences"
	"github.com/panelpipe/panelpipe/prefs"
	"github.com/panelpipe/panelpipe/regression"
	"github.com/panelpipe/panelpipe/sinks/ebitensink"
	"github.com/panelpipe/panelpipe/sinks/glsink"
	"github.com/panelpipe/panelpipe/sinks/headless"
	"github.com/panelpipe/panelpipe/sinks/sdlsink"
	"github.com/panelpipe/panelpipe/statsview"
	"github.com/panelpipe/panelpipe/telemetry"
	"github.com/panelpipe/panelpipe/version"
)

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"
)

type stateRequest struct {
	req  stateReq
	args any
}

// communication between the main() function and the launch() function. this
// is required because the window sinks must be created, serviced and destroyed
// on the main thread.
type mainSync struct {
	state chan stateRequest

	// functions that must be run on the main thread. the main thread does
	// nothing else until the function returns
	mainthread chan func()
}

// run the function on the main thread and wait for it to return.
func (ms *mainSync) run(f func() error) error {
	done := make(chan error, 1)
	ms.mainthread <- func() {
		done <- f()
	}
	return <-done
}

// the main goroutine must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

// #mainthread
func main() {
	ms := &mainSync{
		state:      make(chan stateRequest),
		mainthread: make(chan func()),
	}

	// the value to use with os.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	// launch program as a go routine. further communication is through
	// the mainSync instance
	go launch(ms)

	done := false
	for !done {
		select {
		case f := <-ms.mainthread:
			f()

		case state := <-ms.state:
			switch state.req {
			case reqQuit:
				done = true
				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}
			}
		}
	}

	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to run
// functions on the main thread and to quit.
func launch(ms *mainSync) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "PERFORMANCE", "REGRESS", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		ms.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		ms.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, ms)

	case "PERFORMANCE":
		err = perform(md)

	case "REGRESS":
		err = regress(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		ms.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	ms.state <- stateRequest{req: reqQuit}
}

// sinks that own a window. Run() must be called on the main thread and
// returns when the window is closed or the context is cancelled.
type hostSink interface {
	display.Sink
	Run(ctx context.Context) error
	Close() error
}

// createSink creates the named sink for the panel. Window sinks are created on
// the main thread.
func createSink(ms *mainSync, name string, panel specification.Panel, scale int) (display.Sink, error) {
	title := fmt.Sprintf("%s %s", version.ApplicationName, panel.ID)

	var host hostSink

	switch strings.ToLower(name) {
	case "headless":
		return headless.NewSink(panel.Width, panel.Height, panel.SwapBytes), nil

	case "sdl":
		err := ms.run(func() error {
			var err error
			host, err = sdlsink.NewSink(title, panel.Width, panel.Height, scale, panel.SwapBytes)
			return err
		})
		if err != nil {
			return nil, err
		}

	case "gl":
		err := ms.run(func() error {
			var err error
			host, err = glsink.NewSink(title, panel.Width, panel.Height, scale, panel.SwapBytes)
			return err
		})
		if err != nil {
			return nil, err
		}

	case "ebiten":
		var err error
		host, err = ebitensink.NewSink(title, panel.Width, panel.Height, scale, panel.SwapBytes)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown sink %q: %w", name, display.ErrConfiguration)
	}

	return host, nil
}

// commandLinePrefs builds a command line stack entry from the preferences
// string and the flags that are shortcuts for individual preferences. flags
// with an empty value are ignored.
func commandLinePrefs(s string, flags map[string]string) string {
	group := []string{}
	if s != "" {
		group = append(group, s)
	}
	for k, v := range flags {
		if v != "" {
			group = append(group, fmt.Sprintf("%s::%s", k, v))
		}
	}
	return strings.Join(group, "; ")
}

func run(md *modalflag.Modes, ms *mainSync) error {
	md.NewMode()

	sinkName := md.AddString("sink", "sdl", "display sink: sdl, gl, ebiten, headless")
	panel := md.AddString("panel", "", "panel specification: ILI9488, ILI9341, ST7789, HOST")
	mode := md.AddString("mode", "", "present mode: direct, async")
	source := md.AddString("input", "", "input source: none, gpio, joystick, cardkb, bbq10, gamepad, keyboard, stick, pad")
	tty := md.AddString("tty", "", fmt.Sprintf("serial port of the keyboard bridge. '%s' reads the terminal", ttyStdin))
	overlay := md.AddBool("overlay", false, "draw the measured frame rate over the image")
	scale := md.AddInt("scale", 2, "window scaling of window sinks")
	prefsFile := md.AddString("prefsfile", "", "preferences file")
	cmdPrefs := md.AddString("prefs", "", "preferences for this run: key::value; key::value")
	savePrefs := md.AddBool("saveprefs", false, "save preferences when the run ends")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	memviz := md.AddString("memviz", "", "write a graph of the pipeline to file")
	echo := md.AddBool("log", false, "echo log to stderr")
	printDigest := md.AddBool("digest", false, "print a digest of everything sent to the panel when the run ends")
	macroFile := md.AddString("macro", "", "macro file to run alongside the input source")
	duration := md.AddDuration("duration", 0, "end the run after the duration. zero means run until interrupted")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	if *echo {
		logger.SetEcho(logger.NewColorizer(os.Stderr))
	}

	flags := map[string]string{
		"panel.id":      *panel,
		"pipeline.mode": *mode,
		"input.source":  *source,
		"input.tty":     *tty,
	}
	if *overlay {
		flags["pipeline.overlay"] = "true"
	}
	prefs.PushCommandLineStack(commandLinePrefs(*cmdPrefs, flags))
	defer func() {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "main", "unused command line preferences: %s", unused)
		}
	}()

	prf, err := preferences.NewPreferences(*prefsFile)
	if err != nil {
		return err
	}

	cfg, err := prf.PipelineConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *duration)
		defer stop()
	}
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	sink, err := createSink(ms, *sinkName, cfg.Panel, *scale)
	if err != nil {
		return err
	}
	host, isHost := sink.(hostSink)
	if isHost {
		defer func() {
			_ = ms.run(host.Close)
		}()
	}

	panelSink := sink
	var dig *digest.Sink
	if *printDigest {
		dig = digest.NewSink(sink)
		panelSink = dig
	}

	pl, err := pipeline.NewPipeline(cfg, panelSink, specification.PaletteNES, nil)
	if err != nil {
		return err
	}
	if err := pl.Start(); err != nil {
		return err
	}
	logger.Logf(logger.Allow, "main", "%v", pl)

	engine := testcard.NewEngine(float32(prf.FPS.Get().(float64)))
	if err := engine.SetFeature(emulation.ReqSetPattern, prf.Pattern.String()); err != nil {
		return err
	}

	src, err := openInput(prf.Input.String(), prf.TTY.String(), prf, sink, quit)
	if err != nil {
		return err
	}
	if *macroFile != "" {
		mcr, err := macro.NewMacro(*macroFile, engine, quit)
		if err != nil {
			return err
		}
		src = input.Merge{src, mcr}
	}
	if c, ok := src.(input.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Log(logger.Allow, "input", err)
			}
		}()
	}

	state := input.NewState()
	poller := input.NewPoller(src, state, 0)
	prf.BindPoller(poller)

	// changes to the preferences during the run are applied immediately
	prf.FPS.SetHookPost(func(v prefs.Value) error {
		return engine.SetFeature(emulation.ReqSetFPS, float32(v.(float64)))
	})
	prf.Pattern.SetHookPost(func(v prefs.Value) error {
		return engine.SetFeature(emulation.ReqSetPattern, v.(string))
	})
	prf.Overlay.SetHookPost(func(v prefs.Value) error {
		if ov := pl.Overlay(); ov != nil {
			ov.SetEnabled(v.(bool))
		}
		return nil
	})

	if *memviz != "" {
		if err := dumpStructure(*memviz, pl); err != nil {
			return err
		}
	}

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("statsview not available in this build")
		}
		statsview.Launch(ctx, os.Stdout)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pl.Run(gctx)
	})
	g.Go(func() error {
		// a lost input source is not fatal. the buttons read as released
		if err := poller.Run(gctx); err != nil {
			logger.Log(logger.Allow, "input", err)
		}
		return nil
	})
	g.Go(func() error {
		return engine.Run(gctx, pl, state)
	})
	g.Go(func() error {
		return telemetry.NewReporter(pl, os.Stdout).Run(gctx)
	})

	if isHost {
		g.Go(func() error {
			// the run ends when the window is closed
			defer quit()
			return ms.run(func() error {
				return host.Run(gctx)
			})
		})
	}

	err = g.Wait()

	logger.Logf(logger.Allow, "main", "%d frames produced, %d presented", pl.Produced(), pl.Presented())

	if dig != nil {
		fmt.Printf("digest: %s (%d transfers)\n", dig.Hash(), dig.Transfers())
	}

	if *savePrefs {
		if err := prf.Save(); err != nil {
			return err
		}
	}

	return err
}

func dumpStructure(filename string, pl *pipeline.Pipeline) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	performance.DumpStructure(f, pl)
	return f.Close()
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	def := performance.DefaultCheckConfig()

	panel := md.AddString("panel", def.Panel.ID, "panel specification: ILI9488, ILI9341, ST7789, HOST")
	mode := md.AddString("mode", def.Mode.String(), "present mode: direct, async")
	overlay := md.AddBool("overlay", false, "draw the measured frame rate over the image")
	fps := md.AddFloat64("fps", float64(def.Rate), "rate of the frame producer. zero is uncapped")
	latency := md.AddDuration("latency", def.Latency, "time taken by each transfer to the panel")
	duration := md.AddDuration("duration", def.Duration, "run duration")
	leadtime := md.AddDuration("leadtime", def.Leadtime, "time before the measurement starts")
	profile := md.AddString("profile", "none", "run performance check with profiling: cpu, mem, trace, all, none (comma sep)")
	memviz := md.AddString("memviz", "", "write a graph of the check configuration to file")
	printDigest := md.AddBool("digest", false, "print a digest of everything sent to the panel")
	echo := md.AddBool("log", false, "echo log to stderr")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	if *echo {
		logger.SetEcho(logger.NewColorizer(os.Stderr))
	}

	cfg := def
	cfg.Panel, err = specification.SearchPanel(*panel)
	if err != nil {
		return err
	}
	cfg.Mode, err = display.ParsePresentMode(*mode)
	if err != nil {
		return err
	}
	cfg.Overlay = *overlay
	cfg.Rate = float32(*fps)
	cfg.Latency = *latency
	cfg.Duration = *duration
	cfg.Leadtime = *leadtime
	cfg.Digest = *printDigest

	prf, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	if *memviz != "" {
		f, err := os.Create(*memviz)
		if err != nil {
			return err
		}
		performance.DumpStructure(f, &cfg)
		if err := f.Close(); err != nil {
			return err
		}
	}

	fmt.Fprintf(md.Output, "measuring %s in %s mode for %v (plus %v lead time)\n",
		cfg.Panel.ID, cfg.Mode, cfg.Duration, cfg.Leadtime.Round(time.Millisecond))

	_, err = performance.Check(md.Output, prf, cfg)
	return err
}

func regress(md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("RUN", "LIST", "DELETE", "ADD")

	dbPath := md.AddString("db", paths.ResourcePath(regression.DefaultDBFile), "regression database")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch md.Mode() {
	case "RUN":
		md.NewMode()

		verbose := md.AddBool("v", false, "output more detail")
		failOnError := md.AddBool("fail", false, "stop on the first error")
		keys := md.AddString("keys", "", "comma separated list of keys to run")

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		summary, err := regression.RegressRun(md.Output, *dbPath, *verbose, *failOnError, regression.ParseKeys(*keys))
		if err != nil {
			return err
		}
		if summary.Fail > 0 || summary.Error > 0 {
			return fmt.Errorf("%s", summary)
		}

	case "LIST":
		md.NewMode()

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		return regression.RegressList(md.Output, *dbPath)

	case "DELETE":
		md.NewMode()

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			return fmt.Errorf("database key required")
		case 1:
		default:
			return fmt.Errorf("only one entry can be deleted at a time")
		}

		return regression.RegressDelete(md.Output, os.Stdin, *dbPath, md.GetArg(0))

	case "ADD":
		return regressAdd(md, *dbPath)
	}

	return nil
}

func regressAdd(md *modalflag.Modes, dbPath string) error {
	md.NewMode()

	panel := md.AddString("panel", specification.PanelILI9488.ID, "panel to regress")
	mode := md.AddString("mode", display.DoubleBufferedAsync.String(),
		fmt.Sprintf("present mode: %s", strings.Join(display.PresentModeList, ", ")))
	scale := md.AddString("scale", pipeline.Aspect.String(),
		fmt.Sprintf("scale mode: %s", strings.Join(pipeline.ScaleModeList, ", ")))
	pattern := md.AddString("pattern", testcard.PatternList[0],
		fmt.Sprintf("testcard pattern: %s", strings.Join(testcard.PatternList, ", ")))
	frames := md.AddInt("frames", 60, "number of frames to run")
	mcr := md.AddString("macro", "", "macro file driving the input")
	notes := md.AddString("notes", "", "additional annotation for the database")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	m, err := display.ParsePresentMode(*mode)
	if err != nil {
		return err
	}
	s, err := pipeline.ParseScaleMode(*scale)
	if err != nil {
		return err
	}

	reg, err := regression.NewPanelRegression(*panel, m, s, *pattern, *frames)
	if err != nil {
		return err
	}
	reg.Macro = *mcr
	reg.Notes = *notes

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return err
	}

	return regression.RegressAdd(md.Output, dbPath, reg)
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	printVersion(md.Output, *revision)
	return nil
}

func printVersion(output io.Writer, revision bool) {
	v, r, _ := version.Version()
	fmt.Fprintf(output, "%s %s\n", version.ApplicationName, v)
	if revision {
		fmt.Fprintln(output, r)
	}
}
