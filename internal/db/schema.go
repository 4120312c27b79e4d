package db

// targetVersion is the schema version a fresh database is created at and
// every older database is migrated to.
const targetVersion = 3

const createLedger = `CREATE TABLE IF NOT EXISTS migrations (
	version INTEGER PRIMARY KEY
)`

const createInvoices = `CREATE TABLE IF NOT EXISTS invoices (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	template_id INTEGER NOT NULL,
	date TEXT NOT NULL,
	show_methods INTEGER NOT NULL DEFAULT 1,
	show_notes INTEGER NOT NULL DEFAULT 0,
	stage TEXT NOT NULL DEFAULT 'Invoice',
	status TEXT NOT NULL DEFAULT 'Waiting',
	status_date TEXT,
	status_check TEXT,
	notes TEXT,
	items_json TEXT NOT NULL,
	FOREIGN KEY (template_id)
		REFERENCES templates (id)
		ON DELETE NO ACTION
		ON UPDATE NO ACTION
)`

const createEmailConfig = `CREATE TABLE IF NOT EXISTS email_config (
	id INTEGER PRIMARY KEY CHECK (id = 0),
	smtp_server TEXT NOT NULL,
	port INTEGER NOT NULL,
	tls INTEGER NOT NULL,
	username TEXT NOT NULL,
	password TEXT NOT NULL,
	fromname TEXT NOT NULL
)`

// schema creates every table at targetVersion, referenced tables first.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS company (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	logo BLOB,
	phone TEXT,
	email TEXT,
	addr1 TEXT,
	addr2 TEXT,
	city TEXT,
	state TEXT,
	zip TEXT
)`,
	`CREATE TABLE IF NOT EXISTS client (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	phone TEXT,
	email TEXT,
	addr1 TEXT,
	addr2 TEXT,
	city TEXT,
	state TEXT,
	zip TEXT
)`,
	`CREATE TABLE IF NOT EXISTS terms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	due INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS methods (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	link TEXT,
	qr BLOB
)`,
	`CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	rate INTEGER
)`,
	`CREATE TABLE IF NOT EXISTS templates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	company_id INTEGER NOT NULL,
	client_id INTEGER NOT NULL,
	terms_id INTEGER NOT NULL,
	methods_json TEXT NOT NULL,
	FOREIGN KEY (company_id) REFERENCES company (id) ON DELETE NO ACTION ON UPDATE NO ACTION,
	FOREIGN KEY (client_id) REFERENCES client (id) ON DELETE NO ACTION ON UPDATE NO ACTION,
	FOREIGN KEY (terms_id) REFERENCES terms (id) ON DELETE NO ACTION ON UPDATE NO ACTION
)`,
	createInvoices,
	createEmailConfig,
	createLedger,
}
