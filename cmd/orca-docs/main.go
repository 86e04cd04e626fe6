package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	orcadocs "github.com/nasa/orca-docs"
	"github.com/nasa/orca-docs/mcp"
	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		TUIPrintln("error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	formatFlag := &cli.StringFlag{
		Name:  "format",
		Usage: "Output format: json or yaml",
		Value: "json",
	}

	return &cli.App{
		Name:  "orca-docs",
		Usage: "Navigation manifest and site generator for the ORCA documentation",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "manifest",
				Usage: "Sidebar manifest (.json, .yaml) to use instead of the built in one",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Render the documentation site",
				Action: generateAction,
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  "config",
						Value: "orca-docs.json",
					},
					&cli.PathFlag{
						Name:     "out",
						Usage:    "output directory for documentation",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "serve",
						Usage: "Serve documentation for local preview: -serve :8080",
					},
				},
			},
			{
				Name:   "sidebars",
				Usage:  "List the sidebar IDs",
				Action: sidebarsAction,
			},
			{
				Name:      "show",
				Usage:     "Print a sidebar",
				ArgsUsage: "<sidebar id>",
				Action:    showAction,
				Flags:     []cli.Flag{formatFlag},
			},
			{
				Name:   "export",
				Usage:  "Print the whole manifest",
				Action: exportAction,
				Flags:  []cli.Flag{formatFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Expose the sidebars as MCP tools",
				Action: mcpAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "http",
						Usage: "HTTP server address (e.g., ':8080'), stdio is used if not set",
					},
				},
			},
		},
	}
}

// loadManifest is called once per invocation, the resulting set is shared
// read-only by everything that the command runs.
func loadManifest(c *cli.Context) (*orcadocs.SidebarSet, error) {
	path := c.Path("manifest")
	if path == "" {
		return orcadocs.ORCA(), nil
	}

	manifest, err := orcadocs.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	return manifest, nil
}

func generateAction(c *cli.Context) error {
	var (
		configPath = c.Path("config")
		outDir     = c.Path("out")
		serveAddr  = c.String("serve")
	)

	start := time.Now()

	manifest, err := loadManifest(c)
	if err != nil {
		return err
	}

	var conf orcadocs.Config

	confData, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist) && !c.IsSet("config"):
		TUIPrintln("No %s found, using defaults", configPath)
	case err != nil:
		return fmt.Errorf("read config file: %w", err)
	default:
		err = json.Unmarshal(confData, &conf)
		if err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
	}

	err = os.RemoveAll(outDir)
	if err != nil {
		return fmt.Errorf("clear output directory: %w", err)
	}

	err = os.MkdirAll(outDir, 0o770)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	err = orcadocs.Generate(c.Context, outDir, conf, manifest, TUIPrintln)
	if err != nil {
		return fmt.Errorf("generate documentation: %w", err)
	}

	duration := time.Since(start)

	TUIPrintln("Generated documentation in %s", duration.String())

	if serveAddr != "" {
		TUIPrintln("Serving docs at %s", serveAddr)

		err := http.ListenAndServe(serveAddr,
			http.FileServerFS(os.DirFS(outDir)))
		if err != nil {
			return fmt.Errorf("serve static files: %w", err)
		}
	}

	return nil
}

func sidebarsAction(c *cli.Context) error {
	manifest, err := loadManifest(c)
	if err != nil {
		return err
	}

	for _, id := range manifest.IDs() {
		_, err := fmt.Fprintln(c.App.Writer, id)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}

func showAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one sidebar ID")
	}

	format, err := orcadocs.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	manifest, err := loadManifest(c)
	if err != nil {
		return err
	}

	sidebar, err := manifest.Sidebar(c.Args().First())
	if err != nil {
		return err
	}

	return orcadocs.EncodeManifest(c.App.Writer, sidebar, format)
}

func exportAction(c *cli.Context) error {
	format, err := orcadocs.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	manifest, err := loadManifest(c)
	if err != nil {
		return err
	}

	return orcadocs.EncodeManifest(c.App.Writer, manifest, format)
}

func mcpAction(c *cli.Context) error {
	manifest, err := loadManifest(c)
	if err != nil {
		return err
	}

	s := mcp.NewServer(manifest)

	httpAddr := c.String("http")
	if httpAddr != "" {
		TUIPrintln("Starting MCP server on HTTP address: %s", httpAddr)

		err := server.NewStreamableHTTPServer(s).Start(httpAddr)
		if err != nil {
			return fmt.Errorf("serve MCP over HTTP: %w", err)
		}

		return nil
	}

	TUIPrintln("Starting MCP server in stdio mode")

	err = server.ServeStdio(s)
	if err != nil {
		return fmt.Errorf("serve MCP over stdio: %w", err)
	}

	return nil
}

func TUIPrintln(format string, a ...any) {
	_, err := fmt.Fprintf(os.Stderr, format, a...)
	if err != nil {
		println(err.Error())

		return
	}

	println()
}
