package migrations

import "gorm.io/gorm"

func GetCoreMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2025_01_02_000000_create_players_table",
			Up: func(db *gorm.DB) error {
				return db.Exec(`
					CREATE TABLE IF NOT EXISTS players (
						id BIGSERIAL PRIMARY KEY,
						user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
						name VARCHAR(255) NOT NULL,
						nickname VARCHAR(255) NULL,
						image VARCHAR(512) NULL,
						goals INT NOT NULL DEFAULT 0,
						assists INT NOT NULL DEFAULT 0,
						tackles INT NOT NULL DEFAULT 0,
						mvps INT NOT NULL DEFAULT 0,
						wins INT NOT NULL DEFAULT 0,
						matches INT NOT NULL DEFAULT 0,
						average_rating DECIMAL(4,2) NOT NULL DEFAULT 0,
						created_at TIMESTAMP DEFAULT NOW(),
						updated_at TIMESTAMP DEFAULT NOW()
					);
					CREATE INDEX IF NOT EXISTS idx_players_average_rating ON players(average_rating);
					CREATE INDEX IF NOT EXISTS idx_players_goals ON players(goals);
				`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP TABLE IF EXISTS players CASCADE").Error
			},
		},
		{
			Name: "2025_01_02_000100_create_matches_tables",
			Up: func(db *gorm.DB) error {
				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS matches (
						id BIGSERIAL PRIMARY KEY,
						code VARCHAR(6) NOT NULL UNIQUE,
						admin_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
						match_date DATE NOT NULL,
						match_time TIME NOT NULL,
						location VARCHAR(255) NOT NULL,
						players_count VARCHAR(10) NOT NULL CHECK (players_count IN ('3vs3', '5vs5', '6vs6')),
						end_mode VARCHAR(10) NOT NULL CHECK (end_mode IN ('goals', 'time', 'both')),
						goal_limit INT NULL,
						time_limit INT NULL,
						status VARCHAR(20) NOT NULL DEFAULT 'waiting' CHECK (status IN ('waiting', 'in_progress', 'finished', 'cancelled')),
						started_at TIMESTAMP NULL,
						finished_at TIMESTAMP NULL,
						current_minute INT NOT NULL DEFAULT 0,
						is_paused BOOLEAN NOT NULL DEFAULT false,
						winning_team_id BIGINT NULL,
						created_at TIMESTAMP DEFAULT NOW(),
						updated_at TIMESTAMP DEFAULT NOW()
					);
					CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
					CREATE INDEX IF NOT EXISTS idx_matches_admin_id ON matches(admin_id);
					CREATE INDEX IF NOT EXISTS idx_matches_match_date ON matches(match_date, match_time);
				`).Error; err != nil {
					return err
				}

				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS match_teams (
						id BIGSERIAL PRIMARY KEY,
						match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
						team_name VARCHAR(10) NOT NULL CHECK (team_name IN ('team_a', 'team_b')),
						team_color VARCHAR(50) NULL,
						score INT NOT NULL DEFAULT 0,
						created_at TIMESTAMP DEFAULT NOW(),
						updated_at TIMESTAMP DEFAULT NOW(),
						CONSTRAINT idx_match_teams_match_name UNIQUE (match_id, team_name)
					);
					ALTER TABLE matches
						ADD CONSTRAINT fk_matches_winning_team
						FOREIGN KEY (winning_team_id) REFERENCES match_teams(id) ON DELETE SET NULL;
				`).Error; err != nil {
					return err
				}

				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS match_participants (
						id BIGSERIAL PRIMARY KEY,
						match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
						player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
						team_id BIGINT NULL REFERENCES match_teams(id) ON DELETE SET NULL,
						joined_at TIMESTAMP NOT NULL,
						goals_scored INT NOT NULL DEFAULT 0,
						assists_made INT NOT NULL DEFAULT 0,
						tackles_made INT NOT NULL DEFAULT 0,
						defenses_made INT NOT NULL DEFAULT 0,
						created_at TIMESTAMP DEFAULT NOW(),
						updated_at TIMESTAMP DEFAULT NOW(),
						CONSTRAINT idx_match_participants_match_player UNIQUE (match_id, player_id)
					);
					CREATE INDEX IF NOT EXISTS idx_match_participants_player_id ON match_participants(player_id);
					CREATE INDEX IF NOT EXISTS idx_match_participants_team_id ON match_participants(team_id);
				`).Error; err != nil {
					return err
				}

				return db.Exec(`
					CREATE TABLE IF NOT EXISTS match_events (
						id BIGSERIAL PRIMARY KEY,
						match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
						player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
						team_id BIGINT NULL REFERENCES match_teams(id) ON DELETE SET NULL,
						event_type VARCHAR(10) NOT NULL CHECK (event_type IN ('goal', 'assist', 'tackle', 'defense')),
						minute INT NOT NULL DEFAULT 0 CHECK (minute >= 0),
						description VARCHAR(255) NULL,
						created_at TIMESTAMP DEFAULT NOW(),
						updated_at TIMESTAMP DEFAULT NOW()
					);
					CREATE INDEX IF NOT EXISTS idx_match_events_match_type ON match_events(match_id, event_type);
					CREATE INDEX IF NOT EXISTS idx_match_events_player_type ON match_events(player_id, event_type);
				`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec(`
					DROP TABLE IF EXISTS match_events CASCADE;
					DROP TABLE IF EXISTS match_participants CASCADE;
					ALTER TABLE IF EXISTS matches DROP CONSTRAINT IF EXISTS fk_matches_winning_team;
					DROP TABLE IF EXISTS match_teams CASCADE;
					DROP TABLE IF EXISTS matches CASCADE;
				`).Error
			},
		},
		{
			Name: "2025_01_02_000200_create_rating_history_table",
			Up: func(db *gorm.DB) error {
				return db.Exec(`
					CREATE TABLE IF NOT EXISTS rating_history (
						id BIGSERIAL PRIMARY KEY,
						player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
						match_id BIGINT REFERENCES matches(id) ON DELETE SET NULL,
						team_id BIGINT,
						result VARCHAR(10) NOT NULL CHECK (result IN ('win', 'loss', 'draw')),
						match_rating DECIMAL(4,2) NOT NULL,
						average_before DECIMAL(4,2) NOT NULL,
						average_after DECIMAL(4,2) NOT NULL,
						goals_scored INT NOT NULL DEFAULT 0,
						assists_made INT NOT NULL DEFAULT 0,
						tackles_made INT NOT NULL DEFAULT 0,
						defenses_made INT NOT NULL DEFAULT 0,
						is_mvp BOOLEAN NOT NULL DEFAULT false,
						created_at TIMESTAMP DEFAULT NOW()
					);
					CREATE INDEX IF NOT EXISTS idx_rating_history_player_id ON rating_history(player_id);
					CREATE INDEX IF NOT EXISTS idx_rating_history_match_id ON rating_history(match_id);
				`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP TABLE IF EXISTS rating_history CASCADE").Error
			},
		},
	}
}
