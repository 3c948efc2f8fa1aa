package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/hasbyte1/go-live-collections/internal/script"
)

var errDiverged = errors.New("incremental state diverged from rebuild")

type report struct {
	Script     string          `json:"script"`
	Initial    script.Result   `json:"initial"`
	Steps      []script.Result `json:"steps"`
	Consistent bool            `json:"consistent"`
}

func newReplayCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replay a script and print every published change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(args[0])
			if err != nil {
				return err
			}
			rep, err := replay(s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Output == outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				writeText(out, rep)
			}

			if !rep.Consistent {
				return errDiverged
			}
			return nil
		},
	}
}

func replay(s *script.Script) (*report, error) {
	r, err := script.NewRunner(s, nil)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rep := &report{
		Script:  s.Name,
		Initial: r.State(),
	}
	rep.Consistent = rep.Initial.Consistent

	results, err := r.Run()
	for _, res := range results {
		rep.Steps = append(rep.Steps, res)
		if !res.Consistent {
			glog.Warningf("livecoll: step %d (%s) diverged: flat=%v rebuilt=%v", res.Index, res.Step, res.Flat, res.Rebuilt)
			rep.Consistent = false
		}
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func writeText(w io.Writer, rep *report) {
	if rep.Script != "" {
		fmt.Fprintf(w, "script: %s\n", rep.Script)
	}
	fmt.Fprintf(w, "initial %v %s\n", rep.Initial.Flat, rep.Initial.IncrementalDigest)
	for _, step := range rep.Steps {
		fmt.Fprintf(w, "step %d: %s\n", step.Index, step.Step)
		for _, e := range step.Events {
			fmt.Fprintf(w, "  %-7s %s\n", e.Register, e.Text)
		}
		status := "ok"
		if !step.Consistent {
			status = "DIVERGED"
		}
		fmt.Fprintf(w, "  state   %v incremental=%s rebuilt=%s %s\n",
			step.Flat, step.IncrementalDigest, step.RebuiltDigest, status)
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
	if rep.Consistent {
		fmt.Fprintf(w, "%d steps, consistent\n", len(rep.Steps))
	} else {
		fmt.Fprintf(w, "%d steps, DIVERGED\n", len(rep.Steps))
	}
}
