package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/blockedby/episode-relay/internal/delivery"
	"github.com/blockedby/episode-relay/internal/history"
	"github.com/blockedby/episode-relay/internal/organizer"
	"github.com/blockedby/episode-relay/internal/session"
)

const startText = `👋 Hello %s!

I'm a series file organizer bot. I collect episode files, sort them by episode and quality and post them to your channel.

Features:
• Extract series, season, episode and quality from captions or file names
• Collect files until you are ready
• Sort by episode, then by quality
• Re-post with clean captions or forward as-is

Commands:
• /setchannel - Set target channel
• /collect - Start collecting files
• /upload - Sort and post collected files
• /clear - Clear collection
• /status - View collection status`

const helpText = `📖 How to Use

Setup:
1. /setchannel <channel id or @username> (the bot must be allowed to post there)
2. /collect to start collection mode
3. Send files with captions containing series info
4. /upload to sort and post them

Caption format:
• Series name
• Season number (S01 or Season 1)
• Episode number (E01, EP01 or Episode 1)
• Quality (480p, 720p, 1080p, 1440p, 2160p, 4k)

Example: "Breaking Bad S01 E03 720p"

Commands:
• /setchannel <id> - Set upload channel (no argument = back to this chat)
• /collect - Start collecting files
• /upload - Upload sorted files
• /clear - Clear collection
• /status - Check status
• /tagremove - Toggle removal of @tags and promo lines
• /forward - Toggle forwarding instead of re-posting
• /history - Recent uploads`

const aboutText = `ℹ️ About This Bot

Name: Series File Organizer Bot
Features: caption analysis, file collection, episode and quality sorting

Built for organized series uploads`

const (
	msgCollectStarted   = "🔄 Collection started.\nSend files now."
	msgNotCollecting    = "⚠️ Collection is not active. Send /collect first."
	msgNoEpisode        = "⚠️ No episode detected in caption or file name."
	msgUploadStarted    = "📤 Upload started: %d file(s) in %d episode(s)."
	msgUploadRunning    = "⏳ An upload is already running. Wait for it to finish."
	msgUploadDone       = "✅ Upload completed.\nDelivered: %d\nFailed: %d"
	msgUploadFailed     = "❌ Upload failed: %s"
	msgInternalError    = "❌ Something went wrong. Try again."
	msgSetChannelFailed = "❌ Cannot use %s as destination. Add the bot as an admin there and try again."
	msgNotAllowed       = "⛔ This bot is private."
	operatorChatLabel   = "this chat"
)

func onOff(v bool) string {
	if v {
		return "ON ✅"
	}
	return "OFF ❌"
}

func destinationLabel(d *session.Destination) string {
	if d == nil {
		return operatorChatLabel
	}
	if d.Title != "" {
		return d.Title
	}
	return fmt.Sprintf("%d", d.ID)
}

func formatAdded(item session.CollectedItem, total int) string {
	return fmt.Sprintf("✅ Added E%s · %s · Total: %d", item.Metadata.Episode, item.Metadata.Quality, total)
}

func formatStatus(st session.Status, running *delivery.Job) string {
	var b strings.Builder

	state := "idle"
	if st.State == session.StateCollecting {
		state = "collecting"
	}
	fmt.Fprintf(&b, "📊 Status: %s\n", state)
	fmt.Fprintf(&b, "Files collected: %d\n", st.Count)

	for _, g := range organizer.Organize(st.Items) {
		qualities := make([]string, 0, len(g.Members))
		for _, q := range g.Qualities() {
			qualities = append(qualities, q.String())
		}
		fmt.Fprintf(&b, "• E%s: %s\n", g.Episode, strings.Join(qualities, ", "))
	}

	fmt.Fprintf(&b, "🏷️ Tag Remove: %s\n", onOff(st.Options.TagRemove))
	fmt.Fprintf(&b, "🔁 Forward Mode: %s\n", onOff(st.Options.ForwardMode))
	fmt.Fprintf(&b, "📢 Destination: %s", destinationLabel(st.Options.Destination))

	if running != nil {
		fmt.Fprintf(&b, "\n📤 Upload running for %s", time.Since(running.StartedAt).Round(time.Second))
	}
	return b.String()
}

func formatReport(rep delivery.Report) string {
	return fmt.Sprintf(msgUploadDone, rep.Delivered, rep.Failed)
}

func formatHistory(runs []history.Run) string {
	if len(runs) == 0 {
		return "🗂 No uploads yet."
	}

	var b strings.Builder
	b.WriteString("🗂 Recent uploads:")
	for _, r := range runs {
		fmt.Fprintf(&b, "\n• %s → %s: %d delivered, %d failed",
			r.StartedAt.Local().Format("Jan 02 15:04"), r.Destination, r.Delivered, r.Failed)
		if r.Error != "" {
			fmt.Fprintf(&b, " (%s)", r.Error)
		}
	}
	return b.String()
}
