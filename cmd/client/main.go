// Terminal client. Signs in, keeps the heartbeat and chat-list pollers
// running, and drives one conversation at a time from stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"whispr/internal/client"
	"whispr/internal/common"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	var (
		baseURL  = flag.String("api", envOr("WHISPR_API_URL", "http://localhost:8080"), "API base URL")
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "account password")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: client -email you@example.com -password secret [-api http://host:port]")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := client.New(*baseURL)
	login, err := api.Login(ctx, *email, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	fmt.Printf("signed in as %s\n", login.User.Email)

	app := newApp(api)
	app.heartbeat.Start(ctx, true)
	defer app.heartbeat.Stop()
	app.list.Start(ctx)
	defer app.list.Stop()

	app.repl(ctx)
}

type app struct {
	api       *client.Client
	heartbeat *client.Heartbeat
	list      *client.ChatListPoller
	session   *client.Session
}

func newApp(api *client.Client) *app {
	a := &app{api: api}
	a.heartbeat = client.NewHeartbeat(api)
	a.list = client.NewChatListPoller(api, nil)
	a.session = client.NewSession(api,
		func(chatID string, lastSeen *time.Time) {
			a.list.UpdateLastSeen(chatID, lastSeen)
		},
		nil)
	return a
}

func (a *app) repl(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: chats, open N, send TEXT, history, status, contacts, new N, archive N, unread N, mute N, leave N, search TEXT, away, back, quit")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "quit", "exit":
			a.session.Deselect()
			return
		case "chats":
			a.printChats()
		case "open":
			a.open(ctx, arg)
		case "send":
			a.send(ctx, arg)
		case "history":
			a.printHistory()
		case "status":
			a.printStatus()
		case "contacts":
			a.printContacts(ctx)
		case "new":
			a.newChat(ctx, arg)
		case "archive":
			a.withChat(arg, func(c client.ChatSummary) { a.list.SetArchived(c.ID, !c.IsArchived) })
		case "unread":
			a.withChat(arg, func(c client.ChatSummary) { a.list.SetUnread(c.ID, !c.IsUnread) })
		case "mute":
			a.withChat(arg, func(c client.ChatSummary) { a.list.ToggleMute(c.ID) })
		case "leave":
			a.leave(ctx, arg)
		case "search":
			a.search(ctx, arg)
		case "away":
			a.heartbeat.SetActive(false)
			fmt.Println("reporting offline")
		case "back":
			a.heartbeat.SetActive(true)
			fmt.Println("reporting online")
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func (a *app) printChats() {
	items := a.list.Items()
	if len(items) == 0 {
		fmt.Println("no conversations")
		return
	}
	now := time.Now()
	for i, c := range items {
		flags := ""
		if c.IsUnread {
			flags += " [unread]"
		}
		if c.IsArchived {
			flags += " [archived]"
		}
		if c.IsMuted {
			flags += " [muted]"
		}
		preview := ""
		if c.Preview != nil {
			preview = " — " + *c.Preview
		}
		fmt.Printf("%2d. %s (%s)%s%s\n", i+1, c.Name, client.StatusLine(c.LastSeenAt, &c.LastActivityAt, now), flags, preview)
	}
}

func (a *app) open(ctx context.Context, arg string) {
	a.withChat(arg, func(c client.ChatSummary) {
		a.session.Select(ctx, c.ID)
		a.list.SetUnread(c.ID, false)
		fmt.Printf("opened chat with %s\n", c.Name)
	})
}

func (a *app) send(ctx context.Context, text string) {
	if text == "" {
		fmt.Println("nothing to send")
		return
	}
	if _, err := a.session.Send(ctx, client.SendRequest{Content: text, Kind: "text"}); err != nil {
		fmt.Println("send failed:", err)
	}
}

func (a *app) printHistory() {
	messages := a.session.Messages()
	if len(messages) == 0 {
		fmt.Println("no messages (is a chat open?)")
		return
	}
	for _, g := range client.GroupMessages(messages) {
		fmt.Printf("%s:\n", g.SenderName)
		for _, m := range g.Messages {
			fmt.Printf("  [%s] %s\n", m.CreatedAt.Local().Format("15:04"), renderContent(m))
		}
	}
}

func (a *app) printStatus() {
	if a.session.ChatID() == "" {
		fmt.Println("no chat open")
		return
	}
	fmt.Println(client.StatusLine(a.session.LastSeen(), nil, time.Now()))
}

func (a *app) printContacts(ctx context.Context) {
	contacts, err := a.api.ListContacts(ctx)
	if err != nil {
		fmt.Println("contacts failed:", err)
		return
	}
	for i, c := range contacts {
		fmt.Printf("%2d. %s <%s>\n", i+1, c.Name, c.Email)
	}
}

func (a *app) newChat(ctx context.Context, arg string) {
	contacts, err := a.api.ListContacts(ctx)
	if err != nil {
		fmt.Println("contacts failed:", err)
		return
	}
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 || idx > len(contacts) {
		fmt.Println("pick a contact number from `contacts`")
		return
	}
	info, err := a.api.CreateChat(ctx, contacts[idx-1].ID)
	if err != nil {
		fmt.Println("create failed:", err)
		return
	}
	a.session.Select(ctx, info.ChatID)
	a.list.Refresh(ctx)
	fmt.Printf("opened chat with %s\n", info.OtherUser.Name)
}

func (a *app) leave(ctx context.Context, arg string) {
	a.withChat(arg, func(c client.ChatSummary) {
		if err := a.api.LeaveChat(ctx, c.ID); err != nil {
			fmt.Println("leave failed:", err)
			return
		}
		if a.session.ChatID() == c.ID {
			a.session.Deselect()
		}
		a.list.Remove(c.ID)
		fmt.Printf("left chat with %s\n", c.Name)
	})
}

func (a *app) search(ctx context.Context, query string) {
	results, err := a.api.Search(ctx, query)
	if err != nil {
		fmt.Println("search failed:", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, r := range results {
		name := "unknown"
		if r.ContactName != nil {
			name = *r.ContactName
		}
		fmt.Printf("[%s] %s: %s\n", r.CreatedAt.Local().Format("Jan 2 15:04"), name, r.Content)
	}
}

func (a *app) withChat(arg string, fn func(client.ChatSummary)) {
	items := a.list.Items()
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 || idx > len(items) {
		fmt.Println("pick a chat number from `chats`")
		return
	}
	fn(items[idx-1])
}

func renderContent(m client.Message) string {
	switch common.NormalizeKind(m.Kind) {
	case common.KindCall:
		if cl, ok := common.ParseCallLog(m.Content); ok {
			return client.CallLabel(cl)
		}
	case common.KindFile, common.KindAudio:
		if att, ok := common.ParseAttachment(m.Content); ok {
			name := att.FileName
			if name == "" {
				name = att.URL
			}
			return "📎 " + name
		}
	}
	return m.Content
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
