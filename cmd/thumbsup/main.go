// Command thumbsup runs random-action episodes of the ThumbsUp hand
// task and reports whether each episode succeeded.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/dexterous/agent/random"
	"github.com/samuelfneumann/dexterous/environment"
	"github.com/samuelfneumann/dexterous/environment/envconfig"
	"github.com/samuelfneumann/dexterous/environment/hand/thumbsup"
	"github.com/samuelfneumann/dexterous/experiment"
	"github.com/samuelfneumann/dexterous/experiment/trackers"
	ts "github.com/samuelfneumann/dexterous/timestep"
	"github.com/samuelfneumann/dexterous/utils/floatutils"
	"github.com/samuelfneumann/dexterous/utils/progressbar"
)

func main() {
	episodes := flag.Int("episodes", 10, "number of episodes to run")
	seed := flag.Uint64("seed", 0, "seed of the environment and agent")
	configFile := flag.String("config", "", "JSON environment config, "+
		"whose episode_cutoff sets the step limit of the registered "+
		"environment (defaults are used if empty)")
	saveDir := flag.String("save", "", "directory to save tracker data "+
		"to (nothing is saved if empty)")
	vision := flag.Bool("vision", false, "include vision in observations")
	backend := flag.String("backend", "", "simulator backend, overriding "+
		"the config")
	progress := flag.Bool("progress", false, "display a progress bar "+
		"instead of per-episode results")
	flag.Parse()

	if *episodes <= 0 {
		log.Fatalf("episodes should be positive, got %v", *episodes)
	}

	conf := envconfig.Default()
	if *configFile != "" {
		var err error
		if conf, err = envconfig.Load(*configFile); err != nil {
			log.Fatalf("could not load config: %v", err)
		}
	}
	if *vision {
		conf.Vision = true
	}
	if *backend != "" {
		conf.Backend = *backend
	}

	registry := environment.NewRegistry()
	if err := thumbsup.RegisterWithLimit(registry, conf.EpisodeCutoff,
		conf.HandConfig(*seed)); err != nil {
		log.Fatalf("could not register environment: %v", err)
	}

	env, _, err := registry.Make(thumbsup.ID, *seed)
	if err != nil {
		log.Fatalf("could not make %v: %v", thumbsup.ID, err)
	}
	defer env.Close()

	// The environment draws goals from seed and initial noise from seed+1
	agent, err := random.New(env.ActionSpec(), *seed+2)
	if err != nil {
		log.Fatalf("could not create agent: %v", err)
	}

	ret := trackers.NewReturn(filepath.Join(*saveDir, "return.bin"))
	length := trackers.NewEpisodeLength(filepath.Join(*saveDir, "length.bin"))
	success := trackers.NewSuccess(filepath.Join(*saveDir, "success.bin"))

	reg, _ := registry.Lookup(thumbsup.ID)
	steps := uint(*episodes * reg.MaxEpisodeSteps)
	exp := experiment.NewOnline(env, agent, steps, ret, length, success)

	var bar *progressbar.ManualProgressBar
	if *progress {
		bar = progressbar.NewManualProgressBar(os.Stdout, 50, *episodes)
		bar.Display()
	}

	episode := 0
	err = exp.RunEpisodes(*episodes, func(last ts.TimeStep) {
		episode++
		if bar != nil {
			bar.Increment()
			bar.Display()
			return
		}
		fmt.Printf("episode %v: success=%v steps=%v end=%v\n", episode,
			last.Info[trackers.SuccessKey], last.Number, last.EndType())
	})
	if bar != nil {
		bar.Close()
	}
	if err != nil {
		log.Fatalf("could not run experiment: %v", err)
	}

	log.Printf("%v episodes: success rate %.2f, mean return %.2f",
		exp.Episodes(), floatutils.Mean(success.Data()...),
		floatutils.Mean(ret.Data()...))

	if *saveDir != "" {
		if err := os.MkdirAll(*saveDir, 0755); err != nil {
			log.Fatalf("could not create save directory: %v", err)
		}
		if err := exp.Save(); err != nil {
			log.Fatalf("could not save data: %v", err)
		}
		log.Printf("saved tracker data to %v", *saveDir)
	}
}
