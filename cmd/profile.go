package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the stored vocabulary profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		p, err := s.ProfileRepo().Load(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		level := p.Level
		if level == "" {
			level = "(not set)"
		}
		known := "none"
		if len(p.KnownWords) > 0 {
			known = strings.Join(p.KnownWords, ", ")
		}
		bold.Fprint(out, "Level:       ")
		fmt.Fprintln(out, level)
		bold.Fprint(out, "Known words: ")
		fmt.Fprintln(out, known)
		fmt.Fprintln(out)

		if len(p.Stats) == 0 {
			fmt.Fprintln(out, "No quiz answers recorded yet.")
			return nil
		}
		rows := make([][]string, 0, len(p.Stats))
		for _, st := range p.Stats {
			rows = append(rows, []string{
				truncate(st.Word, 50),
				color.GreenString("%d", st.Correct),
				color.RedString("%d", st.Incorrect),
				st.LastSeenAt.Local().Format("2006-01-02 15:04"),
			})
		}
		bold.Fprintln(out, "Quiz answers")
		printTable(out, []string{"Question", "Correct", "Incorrect", "Last seen"}, rows, false)
		return nil
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the level, known words and quiz history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to reset without --yes")
		}

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.ProfileRepo().Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Profile reset."))
		return nil
	},
}

func init() {
	profileResetCmd.Flags().Bool("yes", false, "Confirm the reset")
	profileCmd.AddCommand(profileResetCmd)
}
