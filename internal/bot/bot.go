package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/toggle-corp/chrono-server/internal/apperr"
	"github.com/toggle-corp/chrono-server/internal/model"
	"github.com/toggle-corp/chrono-server/internal/repository"
	"github.com/toggle-corp/chrono-server/internal/service"
	"github.com/toggle-corp/chrono-server/internal/timeutil"
)

const helpText = `<b>chrono</b> — time tracking

<b>Logging</b>
/log &lt;task&gt; &lt;date&gt; &lt;start&gt; [end] [description] — log a slot
    date is YYYY-MM-DD or "today", times are HH:MM[:SS];
    omit end to leave the entry running
/finish &lt;entry&gt; &lt;end&gt; — close a running entry
/entries [date] — entries for a day
/delete &lt;entry&gt; — remove an entry
/tasks — your tasks

<b>Reports</b>
/week — this week, day by day
/month — this month, day by day
/projects — all-time hours per project
/active — this week's project ranking
/myprojects — projects you have logged time on`

// Bot aggregates Telegram API with services.
type Bot struct {
	api        *tgbotapi.BotAPI
	userRepo   *repository.UserRepository
	taskRepo   *repository.TaskRepository
	entrySvc   *service.EntryService
	summarySvc *service.SummaryService
	reportSvc  *service.ReportService
	location   *time.Location
}

func New(token string, userRepo *repository.UserRepository, taskRepo *repository.TaskRepository, entrySvc *service.EntryService, summarySvc *service.SummaryService, reportSvc *service.ReportService, loc *time.Location) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:        api,
		userRepo:   userRepo,
		taskRepo:   taskRepo,
		entrySvc:   entrySvc,
		summarySvc: summarySvc,
		reportSvc:  reportSvc,
		location:   loc,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands, see /help")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	now := time.Now().In(b.location)
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		welcome := fmt.Sprintf("Hello, %s!\n\n%s", escape(user.DisplayName()), helpText)
		return b.sendText(msg.Chat.ID, welcome)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "log":
		return b.handleLog(ctx, msg.Chat.ID, user, args, now)
	case "finish":
		return b.handleFinish(ctx, msg.Chat.ID, user, args)
	case "entries":
		return b.handleEntries(ctx, msg.Chat.ID, user, args, now)
	case "delete":
		return b.handleDelete(ctx, msg.Chat.ID, user, args)
	case "tasks":
		return b.handleTasks(ctx, msg.Chat.ID, user)
	case "week":
		text, err := b.reportSvc.WeeklyDigest(ctx, *user, now)
		if err != nil {
			return err
		}
		return b.sendText(msg.Chat.ID, text)
	case "month":
		summary, err := b.summarySvc.MonthlySummary(ctx, user.ID, now)
		if err != nil {
			return err
		}
		return b.sendText(msg.Chat.ID, b.reportSvc.RenderSummary("Monthly report", summary))
	case "projects":
		report, err := b.summarySvc.HoursByProject(ctx, user.ID)
		if err != nil {
			return err
		}
		return b.sendText(msg.Chat.ID, renderProjectHours("Hours by project", report))
	case "active":
		report, err := b.summarySvc.MostActiveProject(ctx, user.ID, now)
		if err != nil {
			return err
		}
		return b.sendText(msg.Chat.ID, renderProjectHours("This week by project", report))
	case "myprojects":
		overviews, err := b.summarySvc.MyProjects(ctx, user.ID)
		if err != nil {
			return err
		}
		return b.sendText(msg.Chat.ID, renderMyProjects(overviews))
	default:
		return b.sendText(msg.Chat.ID, "Unknown command, see /help")
	}
}

func (b *Bot) handleLog(ctx context.Context, chatID int64, user *model.User, args []string, now time.Time) error {
	if len(args) < 3 {
		return b.sendText(chatID, "Usage: /log &lt;task&gt; &lt;date&gt; &lt;start&gt; [end] [description]")
	}

	taskID, err := parseID(args[0])
	if err != nil {
		return b.sendText(chatID, "⚠️ task: expected a numeric task id")
	}
	date, err := parseDate(args[1], now)
	if err != nil {
		return b.sendText(chatID, "⚠️ date: "+escape(err.Error()))
	}
	start, err := timeutil.ParseTimeOfDay(args[2])
	if err != nil {
		return b.sendText(chatID, "⚠️ start_time: "+escape(err.Error()))
	}

	input := service.EntryInput{
		Date:   date,
		Start:  start,
		TaskID: taskID,
	}
	rest := args[3:]
	if len(rest) > 0 {
		if end, err := timeutil.ParseTimeOfDay(rest[0]); err == nil {
			input.End = &end
			rest = rest[1:]
		}
	}
	input.Description = strings.Join(rest, " ")

	entry, err := b.entrySvc.Log(ctx, user, input)
	if err != nil {
		return b.sendDomainError(chatID, err)
	}

	if entry.EndTime == nil {
		return b.sendText(chatID, fmt.Sprintf("▶️ Entry #%d running since %s, close it with /finish", entry.ID, entry.StartTime))
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Entry #%d logged: %s", entry.ID, timeutil.FormatDuration(entry.Duration())))
}

func (b *Bot) handleFinish(ctx context.Context, chatID int64, user *model.User, args []string) error {
	if len(args) != 2 {
		return b.sendText(chatID, "Usage: /finish &lt;entry&gt; &lt;end&gt;")
	}
	entryID, err := parseID(args[0])
	if err != nil {
		return b.sendText(chatID, "⚠️ entry: expected a numeric entry id")
	}
	end, err := timeutil.ParseTimeOfDay(args[1])
	if err != nil {
		return b.sendText(chatID, "⚠️ end_time: "+escape(err.Error()))
	}

	entry, err := b.entrySvc.Finish(ctx, user, entryID, end)
	if err != nil {
		return b.sendDomainError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Entry #%d closed: %s", entry.ID, timeutil.FormatDuration(entry.Duration())))
}

func (b *Bot) handleEntries(ctx context.Context, chatID int64, user *model.User, args []string, now time.Time) error {
	date := now
	if len(args) > 0 {
		parsed, err := parseDate(args[0], now)
		if err != nil {
			return b.sendText(chatID, "⚠️ date: "+escape(err.Error()))
		}
		date = parsed
	}

	entries, err := b.entrySvc.ListDay(ctx, user, date)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return b.sendText(chatID, fmt.Sprintf("No entries on %s", date.Format("2006-01-02")))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", date.Format("Mon 02.01.2006")))
	var total time.Duration
	for _, entry := range entries {
		total += entry.Duration()
		if entry.EndTime == nil {
			sb.WriteString(fmt.Sprintf("#%d  %s – … (running)", entry.ID, entry.StartTime))
		} else {
			sb.WriteString(fmt.Sprintf("#%d  %s – %s (%s)",
				entry.ID, entry.StartTime, *entry.EndTime, timeutil.FormatDuration(entry.Duration())))
		}
		if desc := strings.TrimSpace(entry.Description); desc != "" {
			sb.WriteString(" — " + escape(desc))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("\n⏱ Total: <b>%s</b>", timeutil.FormatDuration(total)))
	return b.sendText(chatID, sb.String())
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, user *model.User, args []string) error {
	if len(args) != 1 {
		return b.sendText(chatID, "Usage: /delete &lt;entry&gt;")
	}
	entryID, err := parseID(args[0])
	if err != nil {
		return b.sendText(chatID, "⚠️ entry: expected a numeric entry id")
	}
	if err := b.entrySvc.Delete(ctx, user, entryID); err != nil {
		return b.sendDomainError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Entry #%d deleted", entryID))
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64, user *model.User) error {
	tasks, err := b.taskRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "You have no tasks yet")
	}

	var sb strings.Builder
	sb.WriteString("<b>Your tasks</b>\n")
	for _, task := range tasks {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", task.ID, escape(task.Title)))
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

// SendWeeklyDigests pushes the weekly report to every known user. Errors for
// individual users are logged, not fatal for the rest.
func (b *Bot) SendWeeklyDigests(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := time.Now().In(b.location)
	for _, user := range users {
		if user.TelegramID == 0 {
			continue
		}
		text, err := b.reportSvc.WeeklyDigest(ctx, user, now)
		if err != nil {
			log.Printf("weekly digest for user %d: %v", user.ID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send digest to user %d: %v", user.ID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

// sendDomainError reports validation failures to the user and passes
// infrastructure errors up.
func (b *Bot) sendDomainError(chatID int64, err error) error {
	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		return err
	}
	text := fmt.Sprintf("⚠️ %s: %s", domainErr.Field, escape(strings.Join(domainErr.Messages, "; ")))
	if domainErr.Kind == apperr.KindOverlapConflict {
		text += fmt.Sprintf(" (conflicts with entry #%d)", domainErr.ConflictID)
	}
	return b.sendText(chatID, text)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func renderProjectHours(title string, report *service.ProjectHoursReport) string {
	if len(report.Projects) == 0 {
		return fmt.Sprintf("<b>%s</b>\n— no time logged on any accessible project", escape(title))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(title)))
	for _, project := range report.Projects {
		sb.WriteString(fmt.Sprintf("%s — %s\n", escape(project.Title), timeutil.FormatDuration(project.Total)))
	}
	sb.WriteString(fmt.Sprintf("\n⏱ Total: <b>%s</b>", timeutil.FormatDuration(report.Total)))
	return sb.String()
}

func renderMyProjects(overviews []service.ProjectOverview) string {
	if len(overviews) == 0 {
		return "You have not logged time on any project yet"
	}

	var sb strings.Builder
	sb.WriteString("<b>My projects</b>\n")
	for _, o := range overviews {
		sb.WriteString(fmt.Sprintf("<b>%s</b> — %s", escape(o.Title), timeutil.FormatDuration(o.Total)))
		if o.ClientName != "" {
			sb.WriteString(fmt.Sprintf(" · %s", escape(o.ClientName)))
		}
		if o.Status != nil {
			sb.WriteString(fmt.Sprintf(" · %s", o.Status.Label()))
		}
		sb.WriteString(fmt.Sprintf("\n   updated %s\n", o.ModifiedAt.Format("2006-01-02")))
	}
	return strings.TrimSpace(sb.String())
}

func parseID(s string) (uint, error) {
	s = strings.TrimPrefix(s, "#")
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

func parseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(s) {
	case "today":
		return timeutil.DateOf(now), nil
	case "yesterday":
		return timeutil.DateOf(now).AddDate(0, 0, -1), nil
	}
	date, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return date, nil
}

func escape(s string) string {
	return html.EscapeString(s)
}
