package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/search"
)

// previewSize bounds how much history is replayed on startup.
const previewSize = 10

// Console drives the interactive prompt. It owns the single reader on
// stdin; everything printed concurrently (the poller) goes through out.
type Console struct {
	in      *bufio.Scanner
	out     io.Writer
	client  contract.IChatClient
	session *Session
}

func NewConsole(in io.Reader, out io.Writer, chat contract.IChatClient, sess *Session) *Console {
	return &Console{
		in:      bufio.NewScanner(in),
		out:     out,
		client:  chat,
		session: sess,
	}
}

// Setup asks for a username and replays the tail of the conversation.
// It must run before the poller starts, otherwise the preview and the
// live feed would interleave.
func (c *Console) Setup(ctx context.Context) error {
	fmt.Fprint(c.out, "\nEnter your username (or press Enter for 'Anonymous'): ")

	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return err
		}
		return io.EOF
	}

	username := strings.TrimSpace(c.in.Text())
	if username == "" {
		username = domain.AnonymousName
	}
	c.session.Rename(username)
	fmt.Fprintf(c.out, "\n👋 Welcome, %s!\n", username)

	c.preview(ctx)
	return nil
}

// preview replays the last few messages. Failures are not fatal, the
// conversation simply starts blank.
func (c *Console) preview(ctx context.Context) {
	offset := 0
	if status, err := c.client.GetStatus(ctx); err == nil && status.MessageCount > previewSize {
		offset = status.MessageCount - previewSize
	}

	messages, total, err := c.client.GetMessages(ctx, offset)
	if err != nil {
		return
	}

	if len(messages) > 0 {
		fmt.Fprintf(c.out, "\n📜 Loading %d previous messages...\n", len(messages))
		for _, message := range messages {
			fmt.Fprintf(c.out, "  [%s] %s: %s\n", message.At.Format(domain.WireTimeLayout), message.Username, message.Text)
		}
	}
	c.session.AdvanceTo(total)
}

// Loop reads lines until the user quits or input runs dry.
func (c *Console) Loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintf(c.out, "\n%s> ", c.session.Username())

		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return err
			}
			fmt.Fprint(c.out, "\n👋 Goodbye!\n")
			return nil
		}

		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := c.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		if _, err := c.client.SendMessage(ctx, c.session.Username(), line); err != nil {
			fmt.Fprintf(c.out, "❌ Failed to send message: %v\n", err)
			continue
		}
		c.session.Increment()
	}
}

func (c *Console) handleCommand(ctx context.Context, line string) bool {
	parts := strings.SplitN(line, " ", 2)
	command := strings.ToLower(parts[0])

	switch command {
	case "/quit", "/exit":
		fmt.Fprint(c.out, "\n👋 Goodbye!\n")
		return true

	case "/name":
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			fmt.Fprint(c.out, "Usage: /name <new_username>\n")
			return false
		}
		username := strings.TrimSpace(parts[1])
		c.session.Rename(username)
		fmt.Fprintf(c.out, "✅ Username changed to: %s\n", username)

	case "/status":
		status, err := c.client.GetStatus(ctx)
		if err != nil {
			fmt.Fprint(c.out, "❌ Cannot reach server\n")
			return false
		}
		// GetStatus only succeeds when the server says it is online
		fmt.Fprint(c.out, "✅ Server: online\n")
		fmt.Fprintf(c.out, "📊 Messages: %d\n", status.MessageCount)

	case "/history":
		messages, total, err := c.client.GetMessages(ctx, 0)
		if err != nil {
			fmt.Fprint(c.out, "❌ Cannot reach server\n")
			return false
		}
		if total == 0 {
			fmt.Fprint(c.out, "No messages yet!\n")
			return false
		}
		fmt.Fprintf(c.out, "\n📜 All %d messages:\n", total)
		c.renderTable(messages)

	case "/search":
		query := search.NewSearchQuery(line)
		if query.Terms == "" {
			fmt.Fprint(c.out, "Usage: /search <terms> [--limit N]\n")
			return false
		}
		results, err := c.client.Search(ctx, query.Terms, query.Limit)
		if err != nil {
			fmt.Fprint(c.out, "❌ Cannot reach server\n")
			return false
		}
		if len(results) == 0 {
			fmt.Fprint(c.out, "No matches found!\n")
			return false
		}
		fmt.Fprintf(c.out, "\n🔍 %d matches:\n", len(results))
		c.renderTable(results)

	case "/clear":
		fmt.Fprint(c.out, "\033[2J\033[H")

	default:
		fmt.Fprintf(c.out, "Unknown command: %s\n", command)
	}
	return false
}

func (c *Console) renderTable(messages []domain.Message) {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"ID", "Time", "User", "Message"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, message := range messages {
		table.Append([]string{
			strconv.Itoa(message.ID),
			message.At.Format(domain.WireTimeLayout),
			message.Username,
			message.Text,
		})
	}
	table.Render()
}
