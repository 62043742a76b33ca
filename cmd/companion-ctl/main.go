package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	cli "github.com/spf13/pflag"

	"companion/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.SocketPath(), "Control socket path")
	cli.Usage = usage
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	resp, err := ipc.Call(*socket, args[0], args[1:]...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "companion-daemon not running:", err)
		os.Exit(1)
	}
	if !resp.OK {
		fmt.Fprintln(os.Stderr, "error:", resp.Error)
		os.Exit(1)
	}
	if len(resp.Data) == 0 {
		return
	}

	var out bytes.Buffer
	if err := json.Indent(&out, resp.Data, "", "  "); err != nil {
		os.Stdout.Write(resp.Data)
	} else {
		out.WriteTo(os.Stdout)
	}
	fmt.Println()
}

var commands = map[string]string{
	"status":         "show tab, speech state, AAC buffer, settings and today's records",
	"listen":         "open the microphone for one utterance",
	"stop":           "stop listening and speaking",
	"speak":          "<text> read text aloud",
	"utterance":      "<text> handle text as if it had been heard",
	"chat":           "<text> talk to the companion and print its reply",
	"history":        "print the conversation",
	"clear-chat":     "start a new conversation",
	"prompts":        "list quick prompts",
	"tab":            "[name] show or switch tab",
	"phrase":         "<label> add a phrase to the AAC buffer",
	"aac-clear":      "clear the AAC buffer",
	"aac-speak":      "read the AAC buffer aloud",
	"reminder":       "<id> toggle a reminder done",
	"alert":          "<type> send a caregiver alert",
	"mood":           "<label> answer the mood question",
	"pain":           "<1-10> answer the pain question",
	"breath":         "<1-5> answer the breathing question",
	"checkin-submit": "submit today's check-in",
	"checkin-reset":  "start today's check-in over",
	"profile":        "[name [slow|normal|fast]] show or set the profile",
	"font":           "cycle the font scale",
	"contrast":       "toggle high contrast",
	"autoread":       "on|off read companion replies aloud",
	"voice":          "on|off enable speech output",
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: companion-ctl [--socket path] <command> [args]\n\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-15s %s\n", name, commands[name])
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, strings.TrimSpace(cli.CommandLine.FlagUsages()))
}
