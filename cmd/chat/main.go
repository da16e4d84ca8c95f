// Command chat is a terminal client for the conversation store. It
// drives the same session controller the UI embeds: sends go through
// the per-chat lock, first messages take over the chat title, and
// transcripts reload on /open.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/animaweaver/chatstore/internal/ai"
	"github.com/animaweaver/chatstore/internal/config"
	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/mode"
	"github.com/animaweaver/chatstore/internal/repository/local"
	"github.com/animaweaver/chatstore/internal/repository/remote"
	"github.com/animaweaver/chatstore/internal/session"
	"github.com/animaweaver/chatstore/internal/store"
)

func main() {
	useRemote := flag.Bool("remote", false, "talk to the configured remote backend instead of the local store")
	flag.Parse()

	godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	kv, err := store.Open(cfg.Store.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Store.Dir).Msg("Failed to open store")
	}
	defer kv.Close()

	var repo domain.Repository
	if *useRemote {
		if cfg.Remote.BaseURL == "" {
			log.Fatal().Msg("remote backend requested but remote.base_url is empty")
		}
		repo = remote.New(cfg.Remote.BaseURL, remote.StaticToken(cfg.Remote.Token), cfg.Remote.Timeout)
	} else {
		var responder ai.Responder = ai.Echo{}
		if cfg.AI.Provider == "openai" && cfg.AI.OpenAI.APIKey != "" {
			responder = ai.NewOpenAI(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model)
		}
		repo = local.New(kv, responder)
	}

	modes := mode.NewResolver(kv)
	ctrl := session.NewController(repo, log.Logger,
		session.WithSendTimeout(cfg.Session.SendTimeout),
		session.WithSessionStore(kv),
	)

	fmt.Println("chatstore - type a message to send, /help for commands")
	if id := ctrl.ActiveChatID(); id != nil {
		if _, err := ctrl.OpenChat(context.Background(), *id); err == nil {
			fmt.Printf("resumed chat %d\n", *id)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctrl, repo, modes, line); quit {
				return
			}
			continue
		}

		res, err := ctrl.Send(context.Background(), session.SendRequest{Text: line})
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(res.Pair.AI.Content)
	}
}

func runCommand(ctrl *session.Controller, repo domain.Repository, modes *mode.Resolver, line string) (quit bool) {
	ctx := context.Background()
	fields := strings.Fields(line)

	switch fields[0] {
	case "/help":
		fmt.Println(`/chats            list chats, newest first
/open <id>        open a chat and print its transcript
/groups           list groups
/mode [m|t]       show or set the open chat's mode
/prompts          show quick-start prompts for the active mode
/sources          show deduplicated sources for the open chat
/tools            show the latest AI turn's tools
/delete <id>      delete a chat
/quit             exit`)

	case "/chats":
		chats, err := repo.GetUserChats(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return
		}
		marketing, teaching := modes.Partition(chats)
		printChats("marketing", marketing)
		printChats("teaching", teaching)

	case "/open":
		id, err := argID(fields)
		if err != nil {
			fmt.Fprintln(os.Stderr, "usage: /open <id>")
			return
		}
		entries, err := ctrl.OpenChat(ctx, id)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.Sender, e.Content)
		}

	case "/groups":
		groups, err := repo.GetGroups(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return
		}
		for _, g := range groups {
			fmt.Printf("%4d  %s\n", g.ID, g.Name)
		}

	case "/mode":
		active := ctrl.ActiveChatID()
		if active == nil {
			fmt.Fprintln(os.Stderr, "no open chat")
			return
		}
		if len(fields) == 1 {
			fmt.Println(modes.Resolve(*active))
			return
		}
		m := domain.ModeTeaching
		if strings.HasPrefix(fields[1], "m") {
			m = domain.ModeMarketing
		}
		if err := modes.Assign(*active, m); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}

	case "/prompts":
		m := domain.DefaultMode
		if active := ctrl.ActiveChatID(); active != nil {
			m = modes.Resolve(*active)
		}
		for _, p := range modes.Prompts(m) {
			fmt.Printf("%s  %s\n", p.ID, p.Label)
		}

	case "/sources":
		for _, s := range ctrl.Sources() {
			fmt.Printf("%s - %s\n", s.Source, s.WhereToFind)
		}

	case "/tools":
		for _, tool := range ctrl.LatestTools() {
			fmt.Println(tool)
		}

	case "/delete":
		id, err := argID(fields)
		if err != nil {
			fmt.Fprintln(os.Stderr, "usage: /delete <id>")
			return
		}
		if err := repo.DeleteChat(ctx, id); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return
		}
		if err := modes.Forget(id); err != nil {
			log.Warn().Err(err).Int64("chat_id", id).Msg("forget chat mode failed")
		}

	case "/quit", "/exit":
		return true

	default:
		fmt.Fprintln(os.Stderr, "unknown command, try /help")
	}
	return false
}

func printChats(label string, chats []domain.Chat) {
	if len(chats) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, c := range chats {
		fmt.Printf("%4d  %s\n", c.ID, c.Title)
	}
}

func argID(fields []string) (int64, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("missing id")
	}
	return strconv.ParseInt(fields[1], 10, 64)
}
