package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailorhq/resume-tailor/internal/domain"
	"github.com/tailorhq/resume-tailor/internal/gapwalker"
)

const ansiMark = "\x1b[42;30m"
const ansiReset = "\x1b[0m"

func walkCmd() *cobra.Command {
	var resumePath, jdPath string
	var noColor bool
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Walk each missing keyword interactively and track coverage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, err := readInputFile(resumePath, "resume")
			if err != nil {
				return err
			}
			jd, err := readInputFile(jdPath, "job description")
			if err != nil {
				return err
			}
			return runWalk(cmd, resume, jd, noColor)
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "path to resume text file")
	cmd.Flags().StringVar(&jdPath, "jd", "", "path to job description text file")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable highlight colors")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("jd")
	return cmd
}

func runWalk(cmd *cobra.Command, resume, jd string, noColor bool) error {
	session := gapwalker.NewSession()
	if err := session.StartAnalysis(); err != nil {
		return err
	}

	cmd.Println("analyzing...")
	analysis, err := client().Score(cmd.Context(), resume, jd)
	if err != nil {
		_ = session.FailAnalysis()
		return err
	}
	if err := session.FinishAnalysis(resume, analysis); err != nil {
		return err
	}

	printAnalysis(cmd, analysis)
	in := bufio.NewReader(cmd.InOrStdin())

	for {
		gap, ok := session.CurrentGap()
		if !ok {
			break
		}
		printGap(cmd, gap)
		choice, err := prompt(cmd, in, "[h]igh / [m]edium / [l]ow impact, [s]kip, [q]uit: ")
		if err != nil {
			return err
		}
		switch choice {
		case "h":
			err = session.Apply(gapwalker.ImpactHigh)
		case "m":
			err = session.Apply(gapwalker.ImpactMedium)
		case "l":
			err = session.Apply(gapwalker.ImpactLow)
		case "q":
			return nil
		default:
			session.Skip()
		}
		if err != nil {
			return err
		}
		cov := session.Coverage()
		cmd.Printf("coverage: %d%% (%d/%d keywords)\n\n", cov.Percent, len(cov.Matched), cov.Total)
	}

	if err := session.Compare(); err != nil {
		return err
	}
	cmd.Println("\n--- tailored resume ---")
	mark := func(s string) string { return ansiMark + s + ansiReset }
	if noColor {
		mark = func(s string) string { return "[" + s + "]" }
	}
	cmd.Println(session.Highlight(session.Text(), mark))

	choice, err := prompt(cmd, in, "\nrequest a full rewrite for the remaining gaps? [y/N]: ")
	if err != nil {
		return err
	}
	if choice != "y" {
		return nil
	}

	res, err := client().Rewrite(cmd.Context(), rewriteRequest{
		Resume:         session.Text(),
		JobDescription: jd,
		Analysis:       &analysis,
	})
	if err != nil {
		return err
	}
	printRewrite(cmd, res)
	return nil
}

func prompt(cmd *cobra.Command, in *bufio.Reader, msg string) (string, error) {
	cmd.Print(msg)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

func printAnalysis(cmd *cobra.Command, res domain.AnalysisResult) {
	cmd.Printf("overall score: %d/100 (keywords %d/50, language %.0f/50)\n",
		res.OverallScore, res.KeywordCoverage.Score, res.LanguageAlignment.Score)
	cmd.Printf("matched (%d): %s\n", len(res.KeywordCoverage.MatchedKeywords),
		strings.Join(res.KeywordCoverage.MatchedKeywords, ", "))
	cmd.Printf("missing (%d):\n", len(res.KeywordCoverage.MissingKeywords))
	for _, g := range res.KeywordCoverage.MissingKeywords {
		printGapLine(cmd, g)
	}
	cmd.Println()
}

func printGap(cmd *cobra.Command, g domain.Gap) {
	cmd.Printf("gap: %q (importance %s)\n", g.Keyword, g.Importance)
	if g.Risk != "" {
		cmd.Printf("  risk: %s (+%d points if added)\n", g.Risk, g.Points)
	}
	if g.Confidence > 0 {
		cmd.Printf("  confidence: %.2f\n", g.Confidence)
		for _, r := range g.Reasoning {
			cmd.Printf("  - %s\n", r)
		}
		if g.JDQuote != "" {
			cmd.Printf("  jd: %q\n", g.JDQuote)
		}
	}
}

func printGapLine(cmd *cobra.Command, g domain.Gap) {
	switch {
	case g.Risk != "":
		cmd.Printf("  - %s [%s, risk %s]\n", g.Keyword, g.Importance, g.Risk)
	case g.Confidence > 0:
		cmd.Printf("  - %s [%s, confidence %.2f]\n", g.Keyword, g.Importance, g.Confidence)
	default:
		cmd.Printf("  - %s [%s]\n", g.Keyword, g.Importance)
	}
}

func printRewrite(cmd *cobra.Command, res domain.RewriteResult) {
	cmd.Println("--- rewritten resume ---")
	cmd.Println(res.Text)
	cmd.Printf("\nestimated new score: %d/100\n", res.NewScore)
	if len(res.Changes) > 0 {
		cmd.Println("changes:")
		for _, c := range res.Changes {
			line := "  - "
			if c.Keyword != "" {
				line += c.Keyword + " "
			}
			line += "(" + c.Location + ")"
			cmd.Println(line)
			if c.Before != "" {
				cmd.Println("      before:", c.Before)
			}
			if c.After != "" {
				cmd.Println("      after: ", c.After)
			}
		}
	}
}
