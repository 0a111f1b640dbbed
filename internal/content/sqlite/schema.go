package sqlite

const schema = `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL DEFAULT '',
		aspect_ratio TEXT NOT NULL DEFAULT '',
		is_hidden INTEGER NOT NULL DEFAULT 0,
		order_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS portfolio_items (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		file_url TEXT NOT NULL DEFAULT '',
		file_type TEXT NOT NULL DEFAULT '',
		category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		order_index INTEGER NOT NULL DEFAULT 0,
		is_starred INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_items_category ON portfolio_items(category_id, is_starred);

	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS portfolio_item_tags (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		portfolio_item_id TEXT NOT NULL REFERENCES portfolio_items(id) ON DELETE CASCADE,
		tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_item_tags_item ON portfolio_item_tags(portfolio_item_id);

	CREATE TABLE IF NOT EXISTS ab_tests (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		video_title TEXT NOT NULL DEFAULT '',
		version_a_url TEXT NOT NULL DEFAULT '',
		version_b_url TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		number INTEGER NOT NULL DEFAULT 0,
		suffix TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		reviewer_name TEXT NOT NULL DEFAULT '',
		reviewer_text TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS faqs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		question TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS site_analytics (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		visit_date TEXT NOT NULL UNIQUE,
		visit_count INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS portfolio_clicks (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		portfolio_item_id TEXT NOT NULL UNIQUE REFERENCES portfolio_items(id) ON DELETE CASCADE,
		click_count INTEGER NOT NULL DEFAULT 0,
		last_clicked_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS tag_requests (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		requested_tag TEXT NOT NULL DEFAULT '',
		requested_at INTEGER NOT NULL DEFAULT 0,
		approved INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS private_form_submissions (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS tag_presets (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		preset_name TEXT NOT NULL DEFAULT '',
		tag_ids TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS progress_tracker (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL DEFAULT 0,
		thumbnails_in_progress INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
`
