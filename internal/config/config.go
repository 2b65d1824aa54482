package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress    string
	GeminiAPIKey   string
	CandidateName  string
	ICEServersJSON string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// Load reads environment variables and returns Config with sane defaults.
// Missing API keys degrade features (fallback replies, mock evaluation)
// rather than failing startup.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set - chat, voice and evaluation run on canned fallbacks")
	}

	candidate := os.Getenv("CANDIDATE_NAME")
	if candidate == "" {
		candidate = "Candidate"
	}

	ice := os.Getenv("ICE_SERVERS_JSON")
	if ice == "" {
		ice = `[{"urls":["stun:stun.l.google.com:19302"]}]`
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "assessment-evidence"
	}
	if supabaseURL == "" || supabaseKey == "" {
		log.Println("Warning: SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY not set - evidence uploads disabled")
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress:    addr,
		GeminiAPIKey:   geminiKey,
		CandidateName:  candidate,
		ICEServersJSON: ice,
		SupabaseURL:    supabaseURL,
		SupabaseKey:    supabaseKey,
		SupabaseBucket: bucket,
	}
}
