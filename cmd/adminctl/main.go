package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/examforge/cbt-backend/internal/config"
	"github.com/examforge/cbt-backend/internal/db"
	"github.com/examforge/cbt-backend/internal/exam"
)

func usage() {
	fmt.Fprintf(os.Stderr, `adminctl <command> [flags]

Commands:
  seed-admin     create or update the admin login
  import-exam    load a course and its questions from a JSON file
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	switch os.Args[1] {
	case "seed-admin":
		seedAdmin(ctx, dbh, cfg, os.Args[2:])
	case "import-exam":
		importExam(ctx, exam.NewSQLStore(dbh), os.Args[2:])
	default:
		usage()
	}
}

func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("seed-admin", flag.ExitOnError)
	matric := fs.String("matric", cfg.AdminMatric, "admin login id")
	password := fs.String("password", "", "plaintext password (omit to keep ADMIN_PASS_HASH)")
	_ = fs.Parse(args)

	hash := cfg.AdminPassHash
	if *password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		hash = string(h)
	}

	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (matric, full_name, password_hash, role, department, level, created_at)
		 VALUES ($1,'Administrator',$2,'admin','','',$3)
		 ON CONFLICT (matric) DO UPDATE SET password_hash=EXCLUDED.password_hash`,
		*matric, hash, time.Now().Unix())
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin %q ready", *matric)
}

// examFile is the import format: course metadata plus its full question
// bank, answer keys included.
type examFile struct {
	Course    exam.Course     `json:"course"`
	Questions []exam.Question `json:"questions"`
}

func importExam(ctx context.Context, store exam.Store, args []string) {
	fs := flag.NewFlagSet("import-exam", flag.ExitOnError)
	path := fs.String("file", "", "path to exam JSON")
	_ = fs.Parse(args)
	if *path == "" {
		log.Fatal("import-exam: -file is required")
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read %s: %v", *path, err)
	}
	var ef examFile
	if err := json.Unmarshal(raw, &ef); err != nil {
		log.Fatalf("parse %s: %v", *path, err)
	}
	if ef.Course.Code == "" {
		log.Fatal("import-exam: course.code is required")
	}
	for i := range ef.Questions {
		ef.Questions[i].CourseCode = ef.Course.Code
		if ef.Questions[i].ID == "" || ef.Questions[i].CorrectOption == "" {
			log.Fatalf("question %d: id and correct_option are required", i)
		}
	}
	if ef.Course.QuestionCount == 0 {
		ef.Course.QuestionCount = len(ef.Questions)
	}

	if err := store.PutCourse(ctx, ef.Course); err != nil {
		log.Fatalf("save course: %v", err)
	}
	if err := store.PutQuestions(ctx, ef.Questions); err != nil {
		log.Fatalf("save questions: %v", err)
	}
	log.Printf("imported %s with %d questions", ef.Course.Code, len(ef.Questions))
}
