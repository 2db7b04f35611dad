package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gopredict/experiment"
	"github.com/spf13/cobra"
)

var (
	configPath string
	episodes   int
	seed       uint64
	chartPath  string
	imagePath  string
	noColor    bool
	progress   bool

	rootCmd = &cobra.Command{
		Use:   "gopredict",
		Short: "Evaluate fixed policies in tabular MDPs",
		Long: `gopredict estimates the state-value function of a fixed policy in
a finite MDP with Monte Carlo, TD(0), and TD(λ) prediction, and compares
the estimates with the exact state values of the policy.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// glog reads its flags from the standard flag set, which cobra
			// has already filled in
			return flag.CommandLine.Parse(nil)
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the experiment described by a YAML config file",
		Args:  cobra.NoArgs,
		RunE:  runExperiment,
	}

	referenceCmd = &cobra.Command{
		Use:   "reference",
		Short: "Evaluate the uniform random policy on the 4-state reference MDP",
		Args:  cobra.NoArgs,
		RunE:  runReference,
	}
)

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable coloured output")
	rootCmd.PersistentFlags().BoolVar(&progress, "progress", false,
		"show a progress bar for each evaluator")

	runCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"experiment config file")
	runCmd.MarkFlagRequired("config")

	referenceCmd.Flags().IntVarP(&episodes, "episodes", "n",
		experiment.DefaultEpisodes, "number of episodes per evaluator")
	referenceCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	referenceCmd.Flags().StringVar(&chartPath, "chart", "",
		"file to save a chart of the value error to")
	referenceCmd.Flags().StringVar(&imagePath, "image", "",
		"file to save a PNG image of the state values to")

	rootCmd.AddCommand(runCmd, referenceCmd)
}

func main() {
	defer glog.Flush()

	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	c, err := experiment.Load(configPath)
	if err != nil {
		return err
	}
	if progress {
		c.Progress = cmd.ErrOrStderr()
	}
	return execute(cmd.OutOrStdout(), c)
}

func runReference(cmd *cobra.Command, _ []string) error {
	c := experiment.DefaultConfig()
	c.Seed = seed
	c.Episodes = episodes
	c.Output.Chart = chartPath
	c.Output.Image = imagePath
	if progress {
		c.Progress = cmd.ErrOrStderr()
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return execute(cmd.OutOrStdout(), c)
}

// execute runs the experiment c, prints its results to w, and saves
// the outputs configured in c
func execute(w io.Writer, c experiment.Config) error {
	if err := c.Output.PrepareOutput(); err != nil {
		return err
	}

	results, err := experiment.Run(c)
	if err != nil {
		return err
	}
	printResults(w, aurora.NewAurora(!noColor), c, results)

	if c.Output.Dir != "" {
		if err := experiment.Save(results); err != nil {
			return err
		}
		glog.Infof("saved tracker data to %v", c.Output.Dir)
	}

	if c.Output.Chart != "" {
		if !hasValueErrors(results) {
			glog.Warningf("no value errors recorded, not saving chart to %v",
				c.Output.Chart)
		} else {
			err := writeFile(c.Output.Chart, func(w io.Writer) error {
				return experiment.Plot(results, w)
			})
			if err != nil {
				return err
			}
			glog.Infof("saved value error chart to %v", c.Output.Chart)
		}
	}

	if c.Output.Image != "" {
		err := writeFile(c.Output.Image, func(w io.Writer) error {
			return experiment.Render(results, c.MDP.States, w)
		})
		if err != nil {
			return err
		}
		glog.Infof("saved state value image to %v", c.Output.Image)
	}
	return nil
}

// writeFile creates filename and fills it with write
func writeFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "could not create %v", filename)
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "could not close %v", filename)
	}
	return nil
}

// hasValueErrors returns whether any result tracked its value error
func hasValueErrors(results []experiment.Result) bool {
	for _, r := range results {
		if len(r.Errors) > 0 {
			return true
		}
	}
	return false
}

// printResults prints a table of the state values estimated by each
// evaluator, followed by the true state values and the final value
// error when they are known
func printResults(w io.Writer, au aurora.Aurora, c experiment.Config,
	results []experiment.Result) {
	fmt.Fprintf(w, "%v (%d episodes, seed %d)\n",
		au.Bold("State values"), c.Episodes, c.Seed)

	fmt.Fprint(w, au.Bold(fmt.Sprintf("%-12s", "evaluator")))
	for _, s := range c.MDP.States {
		fmt.Fprint(w, au.Bold(fmt.Sprintf("%10s", s)))
	}
	fmt.Fprint(w, au.Bold(fmt.Sprintf("%10s", "RMSE")))
	fmt.Fprintln(w, au.Bold("  settings"))

	var truth []float64
	for _, r := range results {
		fmt.Fprint(w, au.Cyan(fmt.Sprintf("%-12s", r.Name)))
		for _, v := range r.Values {
			fmt.Fprint(w, au.Green(fmt.Sprintf("%10.4f", v)))
		}

		if len(r.Errors) > 0 {
			rmse := r.Errors[len(r.Errors)-1]
			fmt.Fprint(w, au.Yellow(fmt.Sprintf("%10.4f", rmse)))
		} else {
			fmt.Fprint(w, au.Faint(fmt.Sprintf("%10s", "-")))
		}
		fmt.Fprintln(w, au.Faint("  "+r.Settings))

		if truth == nil {
			truth = r.Truth
		}
	}

	if truth != nil {
		fmt.Fprint(w, au.Blue(fmt.Sprintf("%-12s", "exact")))
		for _, v := range truth {
			fmt.Fprint(w, au.Blue(fmt.Sprintf("%10.4f", v)))
		}
		fmt.Fprintln(w)
	}
}
