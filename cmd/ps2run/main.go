// Command ps2run is a thin driver around the runtime core: it loads a
// flat guest image into emulated memory, records the calling thread as
// the main dispatch thread, invokes the entry function if the
// binary-translation front-end registered one, and then services VBlank
// delivery until interrupted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/0xjjjjjj/ps2recomp/config"
	"github.com/0xjjjjjj/ps2recomp/engine"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the runtime configuration file")
	imagePath := flag.String("image", "", "flat guest image to load into emulated memory")
	loadAddr := flag.Uint("load", 0x100000, "guest address the image is loaded at")
	entryAddr := flag.Uint("entry", 0x100000, "guest address of the entry function")
	flag.Parse()

	if err := run(*configPath, *imagePath, uint32(*loadAddr), uint32(*entryAddr)); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, imagePath string, loadAddr, entryAddr uint32) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rt := engine.New(cfg, nil, afero.NewOsFs())
	defer rt.Shutdown()

	if imagePath != "" {
		image, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("loading guest image: %w", err)
		}
		if n := rt.RDRAM().WriteBytes(loadAddr, image); n != len(image) {
			return fmt.Errorf("guest image of %d bytes does not fit at %#x", len(image), loadAddr)
		}
		log.Printf("loaded %d-byte image at %#x", len(image), loadAddr)
	}

	tid := rt.RegisterMainThread()

	if err := rt.CallFunction(tid, entryAddr); err != nil {
		// Without a front-end linked in there is nothing at the entry
		// address; keep servicing interrupts so registered handlers and
		// VSync waiters still make progress.
		log.Printf("entry %#x: %v", entryAddr, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	poll := time.NewTicker(time.Duration(cfg.VBlankPeriodMicros) * time.Microsecond)
	defer poll.Stop()

	for {
		select {
		case <-sig:
			log.Println("shutting down")
			return nil
		case <-poll.C:
			rt.Gate().Acquire()
			rt.PollVBlank(tid)
			rt.Gate().Release()
		}
	}
}
