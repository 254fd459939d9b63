package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vibin/chat"
	"vibin/client"
	"vibin/models"
)

func newInboxCmd(v *viper.Viper, a *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List matches grouped into your turn and their turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a)
			defer cancel()

			var buckets chat.Buckets
			var err error
			if remote {
				buckets, err = a.store.Inbox(ctx, a.user(), a.cfg.Chat.SortByRecency)
			} else {
				var matches []models.MatchWithProfile
				matches, err = a.store.FetchMatches(ctx, a.user())
				if err != nil {
					return err
				}
				categorizer := chat.NewCategorizer(chat.NewFetcher(a.store), a.cfg.Chat)
				inbox := chat.NewInbox(categorizer, a.user(), chat.RefreshPolicy{
					OnFocus:      a.cfg.Chat.RefreshOnFocus,
					MaxStaleness: a.cfg.Chat.MaxStaleness,
				})
				buckets, err = inbox.SetMatches(ctx, matches)
			}
			if err != nil {
				return err
			}
			printBuckets(cmd.OutOrStdout(), a.user(), buckets)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "let the server categorize the inbox")
	cmd.Flags().Bool("recent", false, "sort each group by latest message")
	v.BindPFlag("chat.sortByRecency", cmd.Flags().Lookup("recent"))
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "history <user>",
		Short: "Print the conversation with a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a)
			defer cancel()

			var from time.Time
			if since > 0 {
				from = time.Now().Add(-since)
			}
			messages, err := chat.NewFetcher(a.store).FetchSince(ctx, a.user(), args[0], from)
			if err != nil {
				return err
			}
			for _, m := range messages {
				printMessage(cmd.OutOrStdout(), a.user(), m)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "only show messages newer than this (e.g. 24h)")
	return cmd
}

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <user> <message...>",
		Short: "Send a message to a match",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a)
			defer cancel()

			var live chat.LiveChannel
			if l, err := client.DialLive(ctx, a.cfg.Client); err != nil {
				log.Warn().Err(err).Msg("⚠️ Live channel unavailable, message will show up on their next refresh")
			} else {
				defer l.Close()
				live = l
			}

			msg, outcome := a.messenger(live).Composer.Send(ctx, a.user(), args[0], strings.Join(args[1:], " "))
			switch outcome {
			case chat.OutcomeSkipped:
				return fmt.Errorf("nothing to send")
			case chat.OutcomeFailed:
				return fmt.Errorf("message to %s was not delivered, try again", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ sent %s\n", msg.MessageID)
			return nil
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <user>",
		Short: "Open a live conversation; each input line is sent, /retry resends a failed message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			live, err := client.DialLive(ctx, a.cfg.Client)
			if err != nil {
				return err
			}
			defer live.Close()

			conv, err := a.messenger(live).Open(ctx, a.user(), args[0])
			if err != nil {
				return err
			}
			defer conv.Close()

			lines := make(chan string)
			go readLines(cmd.InOrStdin(), lines)

			printed := 0
			flush := func() {
				messages := conv.Messages()
				for ; printed < len(messages); printed++ {
					printMessage(out, a.user(), messages[printed])
				}
			}
			flush()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-live.Done():
					return fmt.Errorf("live channel closed")
				case <-conv.Changes():
					flush()
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					switch strings.TrimSpace(line) {
					case "/retry":
						conv.Retry(ctx)
					case "/quit":
						return nil
					default:
						conv.SetDraft(line)
						if conv.Send(ctx) == chat.OutcomeFailed {
							fmt.Fprintln(out, "⚠️ not delivered, type /retry to resend")
						}
					}
				}
			}
		},
	}
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

func printMessage(w io.Writer, currentUserID string, m models.Message) {
	who := m.SenderID
	if who == currentUserID {
		who = "you"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", m.CreatedAt.Local().Format("Jan 2 15:04"), who, m.Body)
}

func printBuckets(w io.Writer, currentUserID string, b chat.Buckets) {
	section := func(title string, entries []chat.Entry) {
		fmt.Fprintf(w, "%s (%d)\n", title, len(entries))
		for _, e := range entries {
			name := e.Match.Name
			if name == "" {
				name = e.Match.OtherUser(currentUserID)
			}
			preview := "say hi 👋"
			if e.LastMessage != nil {
				preview = e.LastMessage.Body
			}
			fmt.Fprintf(w, "  %s: %s\n", name, preview)
		}
	}
	section("Your turn", b.YourTurn)
	section("Their turn", b.TheirTurn)
}
