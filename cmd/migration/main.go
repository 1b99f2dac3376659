package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"strings"

	"gitlab.com/dirk.krummacker/contact-directory/internal/config"
	"gitlab.com/dirk.krummacker/contact-directory/internal/logger"
	"gitlab.com/dirk.krummacker/contact-directory/internal/store"
)

// Usage example on the command line:
// > CONTACTS_DB_PATH=contatos.db go run main.go -file=../../scripts/seed.sql
func main() {
	filePtr := flag.String("file", "database.sql", "the sql file to execute")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", true)
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx := context.Background()
	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open store")
	}
	defer s.Close()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePtr).Msg("could not open sql file")
	}
	defer readFile.Close()

	statements, err := splitStatements(readFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePtr).Msg("could not read sql file")
	}
	for i, sql := range statements {
		if err := s.Exec(ctx, sql); err != nil {
			log.Fatal().Err(err).Int("statement", i+1).Msg("could not execute statement")
		}
	}
	log.Info().Int("statements", len(statements)).Str("file", *filePtr).Msg("migration finished")
}

// splitStatements reads the script line by line and cuts it into statements at every line that
// contains a ';'. Lines starting with "--" are comments.
func splitStatements(r io.Reader) ([]string, error) {
	var statements []string
	fileScanner := bufio.NewScanner(r)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			statements = append(statements, strings.TrimSpace(builder.String()))
			builder = strings.Builder{}
		}
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements, fileScanner.Err()
}
