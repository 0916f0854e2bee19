package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	cli "github.com/urfave/cli/v2"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/automod/countstore"
	"github.com/tppcore/modbot/automod/rules"
	"github.com/tppcore/modbot/automod/setstore"
	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/models"
)

var checkTextCmd = &cli.Command{
	Name:      "check-text",
	Usage:     "informal debugging tool: runs the default rules over text, one message per line",
	ArgsUsage: "[text]",
	Description: "Checks the text given as argument, or every line read from stdin, as chat " +
		"messages from a single user. Moderation actions are printed instead of performed.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "sets-json",
			Usage:   "path to JSON file with named sets (banned-domains, spambot-phrases)",
			EnvVars: []string{"MODBOT_SETS_JSON"},
		},
		&cli.StringFlag{
			Name:  "user",
			Usage: "login of the simulated chat user",
			Value: "someone",
		},
	},
	Action: func(cctx *cli.Context) error {
		if _, err := configLogger(cctx); err != nil {
			return err
		}
		ctx := cctx.Context

		sets := setstore.NewMemSetStore()
		if p := cctx.String("sets-json"); p != "" {
			if err := sets.LoadFromFileJSON(p); err != nil {
				return err
			}
		}
		exec := &automod.MockExecutor{}
		eng := &automod.Engine{
			Rules:    rules.DefaultRules(sets, countstore.NewMemCountStore()),
			Executor: exec,
			ModLog:   &automod.MockModLog{},
			Config:   automod.DefaultConfig(),
		}
		user := models.User{ID: "check-text", SimpleName: cctx.String("user"), DisplayName: cctx.String("user")}

		var lines []string
		if cctx.Args().Present() {
			lines = []string{strings.Join(cctx.Args().Slice(), " ")}
		} else {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		for i, line := range lines {
			msg := chat.Message{
				User:    user,
				Text:    line,
				Source:  chat.SourceChat,
				Details: chat.Details{MessageID: fmt.Sprintf("line-%d", i+1)},
			}
			v, err := eng.Check(ctx, msg)
			if err != nil {
				return err
			}
			out := map[string]any{
				"line":     i + 1,
				"accepted": v.Accepted,
				"action":   v.Action.String(),
				"points":   eng.Points(user),
			}
			if v.Rule != "" {
				out["rule"] = v.Rule
			}
			if v.Action == automod.ActionTimeout {
				out["reason"] = v.Reason
				out["duration"] = v.Duration.Round(time.Second).String()
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return nil
	},
}
