// Command debug dumps stored garden state straight from PostgreSQL, or
// with -deadletter the events the authority failed to deliver.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/osse101/idlegarden/internal/config"
	"github.com/osse101/idlegarden/internal/database"
	"github.com/osse101/idlegarden/internal/event"
)

const dumpTimeout = 30 * time.Second

// section is one table dump. Every query takes the user filter as $1;
// an empty filter matches every player.
type section struct {
	title string
	query string
	row   func(pgx.Rows) (string, error)
}

var sections = []section{
	{
		title: "Gardens",
		query: `SELECT user_id, coins, gems, experience, level, harvest_count, revision
			FROM gardens WHERE $1 = '' OR user_id = $1 ORDER BY user_id`,
		row: func(rows pgx.Rows) (string, error) {
			var userID string
			var coins, gems, exp, harvests, revision int64
			var level int
			if err := rows.Scan(&userID, &coins, &gems, &exp, &level, &harvests, &revision); err != nil {
				return "", err
			}
			return fmt.Sprintf("User: %s, Coins: %d, Gems: %d, Exp: %d, Level: %d, Harvests: %d, Revision: %d",
				userID, coins, gems, exp, level, harvests, revision), nil
		},
	},
	{
		title: "Plots",
		query: `SELECT user_id, plot_id, unlocked, COALESCE(plant_type_id, ''), planted_at
			FROM plots WHERE $1 = '' OR user_id = $1 ORDER BY user_id, plot_id`,
		row: func(rows pgx.Rows) (string, error) {
			var userID, plantType string
			var plotID int
			var unlocked bool
			var plantedAt *time.Time
			if err := rows.Scan(&userID, &plotID, &unlocked, &plantType, &plantedAt); err != nil {
				return "", err
			}
			if plantedAt == nil {
				return fmt.Sprintf("User: %s, Plot: %d, Unlocked: %t, Empty", userID, plotID, unlocked), nil
			}
			return fmt.Sprintf("User: %s, Plot: %d, Plant: %s, PlantedAt: %s",
				userID, plotID, plantType, plantedAt.Format(time.RFC3339)), nil
		},
	},
	{
		title: "Active Boosts",
		query: `SELECT user_id, effect_type, effect_value, expires_at, source
			FROM active_boosts WHERE ($1 = '' OR user_id = $1) AND expires_at > NOW() ORDER BY expires_at`,
		row: func(rows pgx.Rows) (string, error) {
			var userID, effect, source string
			var value float64
			var expiresAt time.Time
			if err := rows.Scan(&userID, &effect, &value, &expiresAt, &source); err != nil {
				return "", err
			}
			return fmt.Sprintf("User: %s, Effect: %s x%.2f, Until: %s, Source: %s",
				userID, effect, value, expiresAt.Format(time.RFC3339), source), nil
		},
	},
	{
		title: "Reward Cooldowns",
		query: `SELECT user_id, reward_type, daily_count, max_daily, cooldown_until
			FROM reward_cooldowns WHERE $1 = '' OR user_id = $1 ORDER BY user_id, reward_type`,
		row: func(rows pgx.Rows) (string, error) {
			var userID, rewardType string
			var count, maxDaily int
			var until *time.Time
			if err := rows.Scan(&userID, &rewardType, &count, &maxDaily, &until); err != nil {
				return "", err
			}
			line := fmt.Sprintf("User: %s, Reward: %s, Today: %d/%d", userID, rewardType, count, maxDaily)
			if until != nil && until.After(time.Now()) {
				line += ", CooldownUntil: " + until.Format(time.RFC3339)
			}
			return line, nil
		},
	},
}

func main() {
	user := flag.String("user", "", "only dump this player")
	deadLetter := flag.String("deadletter", "", "print the dead-letter file at this path instead of querying the database")
	flag.Parse()

	if *deadLetter != "" {
		if err := dumpDeadLetters(*deadLetter, *user); err != nil {
			log.Fatalf("Failed to read dead letters: %v", err)
		}
		return
	}

	cfg := config.LoadDatabase()
	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), dumpTimeout)
	defer cancel()

	for i, s := range sections {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("--- %s ---\n", s.title)
		if err := dump(ctx, dbPool, s, *user); err != nil {
			log.Printf("Failed to dump %s: %v", s.title, err)
		}
	}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func dump(ctx context.Context, db querier, s section, user string) error {
	rows, err := db.Query(ctx, s.query, user)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		line, err := s.row(rows)
		if err != nil {
			log.Printf("Failed to scan row: %v", err)
			continue
		}
		fmt.Println(line)
	}
	return rows.Err()
}

func dumpDeadLetters(path, user string) error {
	entries, err := event.ReadDeadLetters(path)
	if err != nil {
		return err
	}
	fmt.Printf("--- Dead Letters (%s) ---\n", path)
	for _, e := range entries {
		owner, _ := e.Event.GetMetadataValue(event.MetadataKeyUserID).(string)
		if user != "" && owner != user {
			continue
		}
		fmt.Printf("At: %s, Type: %s, User: %s, Attempts: %d, Error: %s\n",
			e.Timestamp.Format(time.RFC3339), e.Event.Type, owner, e.Attempts, e.LastError)
	}
	return nil
}
