package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/evanhutnik/movesuggest-service/internal/common"
	"github.com/evanhutnik/movesuggest-service/internal/config"
	"github.com/evanhutnik/movesuggest-service/internal/session"
	"github.com/evanhutnik/movesuggest-service/internal/suggest"
	"github.com/evanhutnik/movesuggest-service/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Nairobi CBD, used when no bias coordinates are given.
const defaultCoordinates = "36.8219,-1.2921"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "suggest [query]",
		Short: "Query address suggestions from Mapbox",
		Long: `suggest sends one search-as-you-type request to the Mapbox Searchbox API
and prints the normalized suggestions as JSON. Failures print an empty list;
details go to the log on stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proximityFlag, _ := cmd.Flags().GetString("proximity")
			originFlag, _ := cmd.Flags().GetString("origin")
			token, _ := cmd.Flags().GetString("session")
			envFile, _ := cmd.Flags().GetString("env-file")
			debug, _ := cmd.Flags().GetBool("debug")

			proximity, err := types.ParseCoordinates(proximityFlag)
			if err != nil {
				return fmt.Errorf("invalid --proximity: %w", err)
			}
			origin, err := types.ParseCoordinates(originFlag)
			if err != nil {
				return fmt.Errorf("invalid --origin: %w", err)
			}

			var envFiles []string
			if envFile != "" {
				envFiles = append(envFiles, envFile)
			}
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			if debug {
				cfg.Environment = "development"
			}
			logger := newCLILogger(cmd.ErrOrStderr(), cfg.Environment)
			defer logger.Sync()

			if token == "" {
				token = session.NewToken()
			}
			q := types.Query{
				Proximity:    proximity,
				Origin:       origin,
				SessionToken: token,
			}
			if len(args) > 0 {
				q.Text = args[0]
			}

			suggestions := suggest.NewSuggester(cfg.Mapbox, logger).FetchSuggestions(cmd.Context(), q)
			return printJSON(cmd.OutOrStdout(), types.SuggestionsResponse{
				SessionToken: token,
				Suggestions:  suggestions,
			})
		},
	}

	rootCmd.Flags().String("proximity", defaultCoordinates, "bias results toward this 'lng,lat'")
	rootCmd.Flags().String("origin", defaultCoordinates, "origin 'lng,lat' used for relevance")
	rootCmd.Flags().StringP("session", "s", "", "session token to reuse (a new one is generated when empty)")
	rootCmd.Flags().String("env-file", "", "load environment variables from this file")
	rootCmd.Flags().BoolP("debug", "d", false, "verbose logging")
	return rootCmd
}

func newCLILogger(w io.Writer, environment string) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if strings.EqualFold(environment, "development") {
		level = zapcore.DebugLevel
	}
	return common.NewWriterLogger(w, level)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func Execute() error {
	return newRootCmd().Execute()
}
