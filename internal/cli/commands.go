package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/learngrid/internal/app"
	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/availability"
	"github.com/specialistvlad/learngrid/internal/node"
	"github.com/specialistvlad/learngrid/internal/nodeid"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

func checkCycleCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-cycle DEPENDENT PREREQUISITE",
		Short: "Report whether a prerequisite would close a cycle",
		Args:  exactArgs(2),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := parseNodes(args...)
			if err != nil {
				return err
			}
			report, err := a.Service().CheckCycle(cmd.Context(), ids[0], ids[1])
			if err != nil {
				return err
			}
			if !report.HasCycle {
				fmt.Fprintln(cmd.OutOrStdout(), "No cycle.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cycle detected: %s\n", strings.Join(report.Labels, " -> "))
			return nil
		}),
	}
}

func addPrerequisiteCmd(o *options) *cobra.Command {
	var (
		recommended bool
		importance  int
	)
	cmd := &cobra.Command{
		Use:   "add-prerequisite DEPENDENT PREREQUISITE",
		Short: "Make DEPENDENT require PREREQUISITE",
		Args:  exactArgs(2),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := parseNodes(args...)
			if err != nil {
				return err
			}
			edge, err := a.Service().AddPrerequisite(cmd.Context(), ids[0], ids[1], !recommended, importance)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added prerequisite %s: %s requires %s\n", edge.ID, edge.Dependent, edge.Prerequisite)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&recommended, "recommended", false, "Record a recommended rather than required prerequisite")
	cmd.Flags().IntVar(&importance, "importance", node.DefaultImportance,
		fmt.Sprintf("Importance from %d to %d", node.MinImportance, node.MaxImportance))
	return cmd
}

func removePrerequisiteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-prerequisite EDGE_ID",
		Short: "Delete a prerequisite by its edge id",
		Args:  exactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			if err := a.Service().RemovePrerequisite(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed prerequisite %s\n", args[0])
			return nil
		}),
	}
}

func readinessCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "readiness LEARNER NODE",
		Short: "Score how ready a learner is to start a node",
		Args:  exactArgs(2),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := parseNodes(args[1])
			if err != nil {
				return err
			}
			r, err := a.Service().ComputeReadiness(cmd.Context(), ids[0], args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Readiness of %s for %s: %.2f\n", ids[0], args[0], r.Score)
			fmt.Fprintf(w, "Satisfied: %t\n", r.Satisfied)
			fmt.Fprintf(w, "Missing required: %s\n", prerequisiteList(r.MissingRequired))
			fmt.Fprintf(w, "Missing recommended: %s\n", prerequisiteList(r.Recommended.Missing))
			return nil
		}),
	}
}

func availabilityCmd(o *options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "availability LEARNER",
		Short: "List every node with its status for a learner",
		Args:  exactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			results, err := a.Service().ListAvailability(cmd.Context(), args[0], category)
			if err != nil {
				return err
			}
			return printAvailability(cmd.OutOrStdout(), results)
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list nodes of this category")
	return cmd
}

func statusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status LEARNER NODE",
		Short: "Show the availability of one node for a learner",
		Args:  exactArgs(2),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := parseNodes(args[1])
			if err != nil {
				return err
			}
			res, err := a.Service().ResolveAvailability(cmd.Context(), ids[0], args[0])
			if err != nil {
				return err
			}
			return printAvailability(cmd.OutOrStdout(), []availability.Result{res})
		}),
	}
}

func suggestCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest LEARNER",
		Short: "Suggest what the learner can work on next",
		Args:  exactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			results, err := a.Service().Suggestions(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to suggest.")
				return nil
			}
			return printAvailability(cmd.OutOrStdout(), results)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum number of suggestions (0 for all)")
	return cmd
}

func pathCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path NODE",
		Short: "Print the study order leading to a node",
		Args:  exactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := parseNodes(args[0])
			if err != nil {
				return err
			}
			path, err := a.Service().BuildLearningPath(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			for i, n := range path {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, n.Display())
			}
			return nil
		}),
	}
}

func nextStatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-states STATE",
		Short: "List the workflow states reachable from STATE",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := parseState(args[0])
			if err != nil {
				return err
			}
			next := workflow.NextStates(state)
			if len(next) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is terminal.\n", state)
				return nil
			}
			for _, s := range next {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func advanceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "advance LEARNER NODE STATE",
		Short: "Move a learner's progress on a node to STATE",
		Args:  exactArgs(3),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := parseNodes(args[1])
			if err != nil {
				return err
			}
			state, err := parseState(args[2])
			if err != nil {
				return err
			}
			rec, err := a.Service().Advance(cmd.Context(), args[0], ids[0], state)
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		}),
	}
}

func masteryCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mastery LEARNER NODE SCORE",
		Short: "Record a mastery test score out of 100",
		Args:  exactArgs(3),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := parseNodes(args[1])
			if err != nil {
				return err
			}
			score, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return apperr.Validationf("score %q is not a number", args[2])
			}
			rec, err := a.Service().RecordMasteryScore(cmd.Context(), args[0], ids[0], score)
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		}),
	}
}

func serveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Seed the store and serve health and metrics until interrupted",
		Args:  exactArgs(0),
		RunE: o.withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
			a.Logger().Info("Serving until interrupted.")
			<-cmd.Context().Done()
			return nil
		}),
	}
}

func parseNodes(raw ...string) ([]nodeid.Address, error) {
	ids, err := nodeid.ParseAll(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return ids, nil
}

func parseState(raw string) (workflow.State, error) {
	s, err := workflow.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	return s, nil
}

func prerequisiteList(edges []node.Edge) string {
	if len(edges) == 0 {
		return "(none)"
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.Prerequisite.String()
	}
	return strings.Join(ids, ", ")
}

func printRecord(w io.Writer, rec progressstore.Record) {
	fmt.Fprintf(w, "%s %s: %s\n", rec.LearnerID, rec.NodeID, rec.State)
}
