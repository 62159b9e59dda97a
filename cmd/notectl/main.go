package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"notectl/document"
	"notectl/editor"
	"notectl/schema"
	"notectl/server"
	"notectl/state"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	app := &cli.App{
		Name:  "notectl",
		Usage: "block document engine tools",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config directory", Value: "."},
		},
		Commands: []*cli.Command{
			{
				Name:      "fmt",
				Usage:     "normalize a document file and print it",
				ArgsUsage: "FILE",
				Action:    cmdFmt,
			},
			{
				Name:      "text",
				Usage:     "print a document's plain text",
				ArgsUsage: "FILE",
				Action:    cmdText,
			},
			{
				Name:      "apply",
				Usage:     "apply a JSON edit script to a document file",
				ArgsUsage: "FILE SCRIPT",
				Action:    cmdApply,
			},
			{
				Name:      "serve",
				Usage:     "serve a document over the HTTP/websocket API",
				ArgsUsage: "FILE",
				Action:    cmdServe,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("notectl failed")
	}
}

func openEditor(c *cli.Context, path string) (*editor.Editor, error) {
	cfg, err := editor.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := document.Decode(data)
	if err != nil {
		return nil, err
	}
	reg := schema.NewRegistry()
	ed := editor.New(state.New(document.New(), nil, reg), cfg)
	ed.LoadDocument(doc)
	return ed, nil
}

func cmdFmt(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: notectl fmt FILE", 2)
	}
	ed, err := openEditor(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(ed.State().Doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdText(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: notectl text FILE", 2)
	}
	ed, err := openEditor(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	st := ed.State()
	for _, id := range st.BlockOrder() {
		b := st.Block(id)
		if len(b.ChildBlocks()) > 0 {
			continue
		}
		fmt.Println(b.Text())
	}
	return nil
}

// editScript mirrors the POST /api/ops payload: a list of operations folded
// into one transaction.
func cmdApply(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: notectl apply FILE SCRIPT", 2)
	}
	ed, err := openEditor(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	script, err := os.ReadFile(c.Args().Get(1))
	if err != nil {
		return err
	}
	tr, err := server.BuildScript(ed.State(), script)
	if err != nil {
		return err
	}
	ed.Dispatch(tr)
	out, err := json.MarshalIndent(ed.State().Doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdServe(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: notectl serve FILE", 2)
	}
	ed, err := openEditor(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	cfg, err := editor.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	return server.New(ed).Run(cfg.Server.Addr)
}
