package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/hpungsan/vault/internal/config"
	"github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/mcp"
	"github.com/hpungsan/vault/internal/ops"
	"github.com/hpungsan/vault/internal/store"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// stdinIsTerminal is a test seam reporting whether stdin is an interactive terminal.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptOut receives interactive prompts; stdout is reserved for JSON.
var promptOut io.Writer = os.Stderr

// appEnv carries what every command needs. st is built in the app's Before
// hook, once the --store flag has been parsed.
type appEnv struct {
	cfg     *config.Config
	logger  *log.Logger
	homeDir string
	st      *store.Store
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, logger *log.Logger, homeDir string) *cli.App {
	env := &appEnv{cfg: cfg, logger: logger, homeDir: homeDir}

	app := &cli.App{
		Name:    "vault",
		Usage:   "Local hashed-credential store",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"s"},
				EnvVars: []string{"VAULT_STORE"},
				Usage:   "Vault file (default: store_path from config, else ~/vault_database.xml)",
			},
		},
		Before: func(c *cli.Context) error {
			path := c.String("store")
			if path == "" {
				path = env.cfg.ResolveStorePath(env.homeDir)
			}
			env.st = store.New(path,
				store.WithStrictParse(env.cfg.StrictParse),
				store.WithLogger(env.logger),
			)
			return nil
		},
		Commands: []*cli.Command{
			addCmd(env),
			deleteCmd(env),
			listCmd(env),
			lookupCmd(env),
			hashCmd(),
			verifyCmd(env),
			exportCmd(env),
			importCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Store a credential (password from stdin or a hidden prompt)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Usage: "Username"},
			&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Label such as a site name (default: Default)"},
		},
		Action: func(c *cli.Context) error {
			password, err := readSecret("Password: ", true)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Add(c.Context, env.st, ops.AddInput{
				Username: strings.TrimSpace(c.String("username")),
				Password: password,
				Label:    strings.TrimSpace(c.String("label")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete the entry at a position shown by list",
		ArgsUsage: "<index>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "Fail when the index is out of range instead of doing nothing"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one index is required"))
			}
			index, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("index must be an integer: %q", c.Args().First())))
			}

			output, err := ops.Delete(c.Context, env.st, ops.DeleteInput{
				Index:  index,
				Strict: c.Bool("strict"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all entries in stored order",
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, env.st)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// lookupCmd creates the lookup command.
func lookupCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "Check a username/password pair (password from stdin or a hidden prompt)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Usage: "Username"},
		},
		Action: func(c *cli.Context) error {
			password, err := readSecret("Password: ", false)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Lookup(c.Context, env.st, ops.LookupInput{
				Username: strings.TrimSpace(c.String("username")),
				Password: password,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// hashCmd creates the hash command.
func hashCmd() *cli.Command {
	return &cli.Command{
		Name:  "hash",
		Usage: "Show the digest the vault would store for some text (stdin or a hidden prompt)",
		Action: func(c *cli.Context) error {
			text, err := readSecret("Text: ", false)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(ops.Hash(ops.HashInput{Text: text}))
		},
	}
}

// verifyCmd creates the verify command.
func verifyCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check that the vault file parses and its hashes are consistent",
		Action: func(c *cli.Context) error {
			output, err := ops.Verify(c.Context, env.st)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write all entries to a JSONL backup",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output .jsonl path (default: ~/.vault/exports/vault-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, env.st, env.cfg, ops.ExportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load entries from a JSONL backup",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Input .jsonl path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "append", Usage: "Import mode: append|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, env.st, env.cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			if unknown := mcp.ValidateDisabledTools(env.cfg.DisabledTools); len(unknown) > 0 {
				env.logger.Warn("unknown tools in disabled_tools", "tools", unknown)
			}
			env.logger.Info("starting MCP server", "store", env.st.Path(), "version", Version)
			return mcp.Run(env.st, env.cfg, Version)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if vErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", vErr.Code, vErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readSecret reads a secret from piped stdin, or prompts for it without echo
// when stdin is a terminal. confirm asks twice on a terminal. Surrounding
// whitespace is trimmed.
func readSecret(prompt string, confirm bool) (string, error) {
	if !stdinIsTerminal() {
		return readStdin()
	}

	first, err := promptHidden(prompt)
	if err != nil {
		return "", err
	}
	if confirm {
		second, err := promptHidden("Confirm " + strings.ToLower(prompt))
		if err != nil {
			return "", err
		}
		if first != second {
			return "", errors.NewInvalidRequest("passwords do not match")
		}
	}
	return first, nil
}

func promptHidden(prompt string) (string, error) {
	fmt.Fprint(promptOut, prompt)
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(promptOut)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("read from terminal: %w", err))
	}
	return strings.TrimSpace(string(b)), nil
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return strings.TrimSpace(string(data)), nil
}
