// Command gapwalk is an interactive terminal client for the tailoring API.
// It scores a resume against a job description, walks each keyword gap with
// apply/skip choices, tracks live coverage, and can request a full rewrite.
// All session state stays in memory and is discarded on exit.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagServer  string
	flagTimeout time.Duration
	flagRetries uint64
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "gapwalk",
		Short:         "Tailor a resume to a job description",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagServer, "server", envOr("GAPWALK_SERVER", "http://localhost:8080"), "tailoring server base URL")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 60*time.Second, "per-request timeout")
	root.PersistentFlags().Uint64Var(&flagRetries, "retries", 3, "whole-request retries on transport or server failure")

	root.AddCommand(scoreCmd(), walkCmd(), rewriteCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func client() *apiClient {
	return newAPIClient(strings.TrimRight(flagServer, "/"), flagTimeout, flagRetries)
}

func readInputFile(path, what string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s file %s is empty", what, path)
	}
	return text, nil
}

func scoreCmd() *cobra.Command {
	var resumePath, jdPath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a resume against a job description",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, err := readInputFile(resumePath, "resume")
			if err != nil {
				return err
			}
			jd, err := readInputFile(jdPath, "job description")
			if err != nil {
				return err
			}
			res, err := client().Score(cmd.Context(), resume, jd)
			if err != nil {
				return err
			}
			printAnalysis(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "path to resume text file")
	cmd.Flags().StringVar(&jdPath, "jd", "", "path to job description text file")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("jd")
	return cmd
}

func rewriteCmd() *cobra.Command {
	var resumePath, jdPath string
	var gaps []string
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite a resume to cover selected keywords",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, err := readInputFile(resumePath, "resume")
			if err != nil {
				return err
			}
			jd, err := readInputFile(jdPath, "job description")
			if err != nil {
				return err
			}
			res, err := client().Rewrite(cmd.Context(), rewriteRequest{
				Resume:         resume,
				JobDescription: jd,
				SelectedGaps:   gaps,
			})
			if err != nil {
				return err
			}
			printRewrite(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "path to resume text file")
	cmd.Flags().StringVar(&jdPath, "jd", "", "path to job description text file")
	cmd.Flags().StringSliceVar(&gaps, "gaps", nil, "keywords to target (max 5)")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("jd")
	return cmd
}
