package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/server"
)

// EnvAnthropicKey enables the claude responder when set
const EnvAnthropicKey = "ANTHROPIC_API_KEY"

type serveFlags struct {
	addr      string
	rules     string
	model     string
	noClaude  bool
	origins   []string
	githubAPI string
}

func newServeCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local query backend",
		Long: `Run a local backend that answers POST /query.

Replies come from the first responder that handles the message:
  clock    date and time questions ("what is the time", "current date")
  rules    canned replies from a YAML file (--rules)
  github   commit, pull request and bug questions about one repository,
           when GITHUB_TOKEN, GITHUB_OWNER and GITHUB_REPO are set
  claude   the Anthropic Messages API, when ANTHROPIC_API_KEY is set
  echo     "You said: <message>"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Loads .env before the API key is looked up
			cfg, err := deps.LoadConfig()
			if err != nil {
				fmt.Fprintf(deps.Stderr, "Warning: %v (using defaults)\n", err)
			}
			logger.SetOutput(deps.Stderr)
			logger.SetDebug(cfg.Debug || global.debug)

			chain, err := buildResponders(flags, deps.Getenv, deps.Now)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Addr:           flags.addr,
				AllowedOrigins: flags.origins,
				Responders:     chain,
			})
			fmt.Fprintf(deps.Stderr, "Serving on http://%s (responders: %v)\n", srv.Addr(), chain.Names())

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return deps.Serve(ctx, srv)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", server.DefaultAddr, "Address to listen on")
	cmd.Flags().StringVar(&flags.rules, "rules", "", "YAML file of canned replies")
	cmd.Flags().StringVar(&flags.model, "model", server.DefaultClaudeModel, "Claude model used when ANTHROPIC_API_KEY is set")
	cmd.Flags().BoolVar(&flags.noClaude, "no-claude", false, "Never forward messages to Claude")
	cmd.Flags().StringSliceVar(&flags.origins, "allow-origin", []string{server.DefaultAllowedOrigin}, "Origins allowed by CORS")
	cmd.Flags().StringVar(&flags.githubAPI, "github-api", server.DefaultGitHubAPI, "GitHub REST API root used by the github responder")
	return cmd
}

// buildResponders assembles the chain: clock, rules, github, claude, echo
func buildResponders(flags *serveFlags, getenv func(string) string, now func() time.Time) (server.Chain, error) {
	chain := server.Chain{server.ClockResponder{Now: now}}

	if flags.rules != "" {
		rules, err := server.LoadRules(flags.rules)
		if err != nil {
			return nil, err
		}
		chain = append(chain, server.RulesResponder{Rules: rules})
	}

	var claude *server.ClaudeResponder
	if key := getenv(EnvAnthropicKey); key != "" && !flags.noClaude {
		claude = server.NewClaudeResponder(key, flags.model)
		logger.Info("claude responder enabled", "model", claude.Model())
	}

	token, owner, repo := getenv(server.EnvGitHubToken), getenv(server.EnvGitHubOwner), getenv(server.EnvGitHubRepo)
	if token != "" && owner != "" && repo != "" {
		opts := []server.GitHubOption{server.WithGitHubClock(now)}
		if flags.githubAPI != "" {
			opts = append(opts, server.WithGitHubBaseURL(flags.githubAPI))
		}
		if claude != nil {
			opts = append(opts, server.WithSummarizer(claude.Summarize))
		}
		gh, err := server.NewGitHubResponder(token, owner, repo, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("github responder enabled", "repository", gh.Repository())
		chain = append(chain, gh)
	}

	if claude != nil {
		chain = append(chain, claude)
	}

	return append(chain, server.EchoResponder{}), nil
}

func serveUntilSignal(ctx context.Context, srv *server.Server) error {
	return srv.ListenAndServe(ctx)
}
