package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nickyhof/SnapDB"
	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/db"
	"github.com/nickyhof/SnapDB/ps"
	"github.com/nickyhof/SnapDB/sql"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// CLI holds the CLI state
type CLI struct {
	engine   *db.Engine
	out      io.Writer
	s3Config *ps.S3Config
	pending  strings.Builder // statement text not yet terminated by ';'
	history  []string
}

func main() {
	baseDir := flag.String("baseDir", "", "Base directory for the database (memory if empty)")
	history := flag.Bool("history", true, "Commit every snapshot to a git history")
	sqlFile := flag.String("sqlFile", "", "SQL file to execute (non-interactive)")
	userName := flag.String("name", "SnapDB", "User name for snapshot commits")
	userEmail := flag.String("email", "cli@snapdb.local", "User email for snapshot commits")
	s3AccessKey := flag.String("s3AccessKey", "", "S3 access key for .backup/.restore (default credential chain if empty)")
	s3SecretKey := flag.String("s3SecretKey", "", "S3 secret key for .backup/.restore")
	s3Region := flag.String("s3Region", "", "S3 region for .backup/.restore")
	s3Endpoint := flag.String("s3Endpoint", "", "Custom S3 endpoint (e.g. MinIO)")
	flag.Parse()

	printBanner()

	var persistence *ps.Persistence
	var err error
	if *baseDir == "" {
		fmt.Printf("%sUsing memory persistence%s\n", SuccessColor, ResetColor)
		persistence, err = ps.NewMemoryPersistence()
	} else {
		fmt.Printf("%sUsing file persistence: %s%s\n", SuccessColor, *baseDir, ResetColor)
		persistence, err = ps.NewFilePersistence(*baseDir, *history)
	}
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	instance := SnapDB.Open(persistence)
	cli := &CLI{
		engine: instance.Engine(core.Identity{Name: *userName, Email: *userEmail}),
		out:    os.Stdout,
		s3Config: &ps.S3Config{
			AccessKey: *s3AccessKey,
			SecretKey: *s3SecretKey,
			Region:    *s3Region,
			Endpoint:  *s3Endpoint,
		},
	}

	if *sqlFile != "" {
		if err := cli.importFile(*sqlFile); err != nil {
			fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cli.prompt(),
		HistoryFile:       getHistoryPath(),
		HistoryLimit:      1000,
		HistorySearchFold: true,
		InterruptPrompt:   "^C",
		EOFPrompt:         ".quit",
	})
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	defer rl.Close()

	cli.out = rl.Stdout()
	cli.run(rl)
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("SnapDB v%s", Version)
	padding := bannerWidth - len(versionLine) - 2 // -2 for "  " margins
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║   Embedded SQL with JSON snapshots    ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func (cli *CLI) run(rl *readline.Instance) {
	for {
		rl.SetPrompt(cli.prompt())

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			cli.pending.Reset()
			continue
		}
		if err != nil {
			cli.quit()
			return
		}

		if quit := cli.handleLine(line); quit {
			return
		}
	}
}

func (cli *CLI) prompt() string {
	if cli.pending.Len() > 0 {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}
	return fmt.Sprintf("%ssnapdb>%s ", PromptColor, ResetColor)
}

// handleLine consumes one line of input. Dot commands run immediately;
// anything else accumulates until the text ends with ';' and then runs as
// one batch. It reports whether the CLI should exit.
func (cli *CLI) handleLine(line string) bool {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return false
	}

	if cli.pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
		return cli.handleCommand(line)
	}

	cli.pending.WriteString(line)
	text := strings.TrimSpace(cli.pending.String())
	if !strings.HasSuffix(text, ";") {
		cli.pending.WriteString("\n")
		return false
	}
	cli.pending.Reset()

	cli.addToHistory(text)
	cli.executeBatch(text)
	return false
}

func (cli *CLI) executeBatch(text string) {
	for _, result := range cli.engine.ExecuteBatch(text) {
		if failed, ok := result.(db.ErrorResult); ok {
			fmt.Fprintf(cli.out, "%s✗ %s%s\n", ErrorColor, failed.String(), ResetColor)
			continue
		}
		result.Display(cli.out)
	}
}

func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return false
	}
	command := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch command {
	case ".quit", ".exit", ".q":
		cli.quit()
		return true

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".save":
		cli.save()

	case ".tables":
		cli.showTables()

	case ".history":
		cli.printHistory()

	case ".log":
		cli.showLog()

	case ".checkout":
		if arg == "" {
			cli.errorf("Usage: .checkout <transaction>")
			break
		}
		txn, err := cli.engine.Checkout(arg)
		if err != nil {
			cli.errorf("Error: %v", err)
			break
		}
		cli.successf("Checked out %s (saved as %s)", arg, txn.ShortId())

	case ".backup":
		if arg == "" {
			cli.errorf("Usage: .backup <path|s3://bucket/key>")
			break
		}
		if err := cli.engine.Backup(context.Background(), arg, cli.s3Config); err != nil {
			cli.errorf("Error: %v", err)
			break
		}
		cli.successf("Backup written to %s", arg)

	case ".restore":
		if arg == "" {
			cli.errorf("Usage: .restore <path|s3://bucket/key|https://...>")
			break
		}
		if err := cli.engine.RestoreFrom(context.Background(), arg, cli.s3Config); err != nil {
			cli.errorf("Error: %v", err)
			break
		}
		cli.successf("Restored from %s", arg)

	case ".import":
		if arg == "" {
			cli.errorf("Usage: .import <file.sql>")
			break
		}
		if err := cli.importFile(arg); err != nil {
			cli.errorf("Error: %v", err)
		}

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".version":
		fmt.Fprintf(cli.out, "SnapDB version %s\n", Version)

	default:
		cli.errorf("Unknown command: %s (type .help for commands)", parts[0])
	}

	return false
}

func (cli *CLI) errorf(format string, args ...any) {
	fmt.Fprintf(cli.out, "%s✗ %s%s\n", ErrorColor, fmt.Sprintf(format, args...), ResetColor)
}

func (cli *CLI) successf(format string, args ...any) {
	fmt.Fprintf(cli.out, "%s✓ %s%s\n", SuccessColor, fmt.Sprintf(format, args...), ResetColor)
}

func (cli *CLI) quit() {
	cli.save()
	fmt.Fprintf(cli.out, "%sGoodbye!%s\n", SuccessColor, ResetColor)
}

func (cli *CLI) save() {
	txn, err := cli.engine.Save()
	if err != nil {
		cli.errorf("Error saving: %v", err)
		return
	}
	if txn.Id != "" {
		cli.successf("Saved (%s)", txn.ShortId())
	} else {
		cli.successf("Saved")
	}
}

func (cli *CLI) printHelp() {
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  .help, .h          Show this help message")
	fmt.Fprintln(cli.out, "  .quit, .exit       Save and exit the CLI")
	fmt.Fprintln(cli.out, "  .save              Save the database now")
	fmt.Fprintln(cli.out, "  .tables            List tables and their columns")
	fmt.Fprintln(cli.out, "  .import <file>     Execute SQL statements from a file")
	fmt.Fprintln(cli.out, "  .log               Show snapshot history")
	fmt.Fprintln(cli.out, "  .checkout <txn>    Restore the snapshot of a transaction")
	fmt.Fprintln(cli.out, "  .backup <url>      Export a snapshot (path or s3://bucket/key)")
	fmt.Fprintln(cli.out, "  .restore <url>     Replace the database from an exported snapshot")
	fmt.Fprintln(cli.out, "  .history           Show command history")
	fmt.Fprintln(cli.out, "  .clear             Clear the screen")
	fmt.Fprintln(cli.out, "  .version           Show version info")
	fmt.Fprintln(cli.out)
	fmt.Fprintf(cli.out, "%s%sSQL Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(cli.out, "  CREATE TABLE <table> (<column> <INT|TEXT|FLOAT|BOOL> [PRIMARY KEY] [UNIQUE] [NOT NULL], ...);")
	fmt.Fprintln(cli.out, "  INSERT INTO <table> (<cols>) VALUES (<vals>);")
	fmt.Fprintln(cli.out, "  SELECT <cols|*> FROM <table> [JOIN <t2> ON <a.x> = <t2.y>] [WHERE <col> = <val>];")
	fmt.Fprintln(cli.out, "  UPDATE <table> SET <col> = <val>[, ...] [WHERE <col> = <val>];")
	fmt.Fprintln(cli.out, "  DELETE FROM <table> [WHERE <col> = <val>];")
	fmt.Fprintln(cli.out)
}

func (cli *CLI) showTables() {
	tables := cli.engine.Tables()
	if len(tables) == 0 {
		fmt.Fprintln(cli.out, "No tables")
		return
	}

	table := db.NewTable(cli.out)
	table.Header([]string{"table", "columns"})
	for _, info := range tables {
		columns := make([]string, len(info.Columns))
		for i, column := range info.Columns {
			columns[i] = describeColumn(column)
		}
		table.Row([]string{info.Name, strings.Join(columns, ", ")})
	}
	table.Render()
}

func describeColumn(column core.Column) string {
	parts := []string{column.Name, column.Type.String()}
	if column.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if column.Unique {
		parts = append(parts, "UNIQUE")
	}
	if !column.Nullable && !column.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

func (cli *CLI) showLog() {
	persistence := cli.engine.Persistence
	if persistence == nil || !persistence.HasHistory() {
		fmt.Fprintln(cli.out, "History is disabled")
		return
	}

	history, err := persistence.History()
	if err != nil {
		cli.errorf("Error: %v", err)
		return
	}
	if len(history) == 0 {
		fmt.Fprintln(cli.out, "No transactions")
		return
	}

	for _, txn := range history {
		fmt.Fprintf(cli.out, "%s%s%s  %s  %s  %s\n",
			BoldColor, txn.ShortId(), ResetColor,
			txn.When.Format("2006-01-02 15:04:05"), txn.Author, strings.TrimSpace(txn.Message))
	}
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > 1000 {
		cli.history = cli.history[len(cli.history)-1000:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := max(len(cli.history)-20, 0)
	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".snapdb_history")
}

// importFile executes the statements of a SQL file one by one and saves
// once at the end.
func (cli *CLI) importFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	successCount := 0
	errorCount := 0
	mutated := false

	for i, stmt := range sql.SplitStatements(string(data)) {
		result, err := cli.executeStatement(stmt)
		if err != nil {
			fmt.Fprintf(cli.out, "%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(stmt, 50), ResetColor)
			fmt.Fprintf(cli.out, "      Error: %v\n", err)
			errorCount++
			continue
		}
		successCount++

		switch r := result.(type) {
		case db.CommitResult:
			mutated = true
			fmt.Fprintf(cli.out, "%s[%d] ✓ %s (%s)%s\n", SuccessColor, i+1, truncate(stmt, 50), r.Message, ResetColor)
		case db.QueryResult:
			fmt.Fprintf(cli.out, "%s[%d] ✓ %s (%d rows)%s\n", SuccessColor, i+1, truncate(stmt, 50), len(r.Rows), ResetColor)
		default:
			fmt.Fprintf(cli.out, "%s[%d] ✓ %s%s\n", SuccessColor, i+1, truncate(stmt, 50), ResetColor)
		}
	}

	if mutated {
		if _, err := cli.engine.Save(); err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}
	}

	fmt.Fprintf(cli.out, "\n%s✓ Import complete: %d succeeded, %d failed%s\n",
		SuccessColor, successCount, errorCount, ResetColor)

	return nil
}

func (cli *CLI) executeStatement(stmt string) (db.Result, error) {
	command, err := sql.Parse(stmt)
	if err != nil {
		return nil, err
	}
	return cli.engine.ExecuteCommand(command)
}

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
