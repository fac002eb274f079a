package client

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
	"github.com/fulldump/btrievedb/lock"
)

// Version of the engine reported by GetVersion.
const (
	EngineVersion  = 16
	EngineRevision = 1
)

// Client is a session. A client and its files are not safe for concurrent
// use: every session runs its operations one at a time, and concurrency
// comes from running many sessions.
type Client struct {
	db          *database.Database
	owner       lock.Owner
	files       []*File
	directories map[btrieve.DiskDrive]string
	transaction *transaction
	login       string
	stopped     bool
}

// New allocates a session. The identifiers group sessions for diagnostics
// and show up in lock owner information.
func New(db *database.Database, serviceAgentIdentifier, clientIdentifier int) *Client {
	return &Client{
		db: db,
		owner: lock.Owner{
			ID:                     db.NextClient(),
			ServiceAgentIdentifier: serviceAgentIdentifier,
			ClientIdentifier:       clientIdentifier,
		},
		directories: map[btrieve.DiskDrive]string{},
	}
}

func (c *Client) GetServiceAgentIdentifier() int {
	return c.owner.ServiceAgentIdentifier
}

func (c *Client) GetClientIdentifier() int {
	return c.owner.ClientIdentifier
}

func (c *Client) valid() error {
	if c.stopped {
		return btrieve.StatusSessionNoLongerValid
	}
	return nil
}

// GetVersion reports the engine version. The file is optional.
func (c *Client) GetVersion(f *File) (*btrieve.Version, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	if f != nil && f.closed {
		return nil, btrieve.StatusFileNotOpen
	}
	return &btrieve.Version{
		ClientVersionType: btrieve.VersionTypeClientEngine,
		ClientVersion:     EngineVersion,
		ClientRevision:    EngineRevision,
		LocalVersionType:  btrieve.VersionTypeUnix,
		LocalVersion:      EngineVersion,
		LocalRevision:     EngineRevision,
		RemoteVersionType: btrieve.VersionTypeNone,
	}, nil
}

// splitDrive separates an optional "X:" prefix from a file name.
func splitDrive(name string) (btrieve.DiskDrive, string) {
	if len(name) >= 2 && name[1] == ':' {
		letter := strings.ToUpper(name[:1])
		if letter >= "A" && letter <= "Z" {
			return btrieve.DiskDrive(letter[0] - 'A'), name[2:]
		}
	}
	return btrieve.DiskDriveDefault, name
}

// resolve turns a file name into a data directory name. Relative names are
// taken from the current directory of their drive.
func (c *Client) resolve(name string) string {
	drive, name := splitDrive(name)
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") {
		return database.Name(name)
	}
	dir, ok := c.directories[drive]
	if !ok {
		dir = c.directories[btrieve.DiskDriveDefault]
	}
	return database.Name(path.Join(dir, name))
}

// SetCurrentDirectory sets the directory relative names of drive are
// resolved against. The directory must exist inside the data directory.
func (c *Client) SetCurrentDirectory(drive btrieve.DiskDrive, dir string) error {
	if err := c.valid(); err != nil {
		return err
	}
	if drive.String() == "UNKNOWN" {
		return fmt.Errorf("drive %d: %w", drive, btrieve.StatusInvalidOption)
	}

	_, rest := splitDrive(dir)
	rest = strings.ReplaceAll(rest, `\`, "/")
	if !strings.HasPrefix(rest, "/") {
		current := c.directories[drive]
		rest = path.Join(current, rest)
	}
	name := database.Name(rest)

	info, err := os.Stat(c.db.Path(name))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("directory '%s': %w", dir, btrieve.StatusDirectoryError)
	}
	c.directories[drive] = name
	return nil
}

func (c *Client) GetCurrentDirectory(drive btrieve.DiskDrive) (string, error) {
	if err := c.valid(); err != nil {
		return "", err
	}
	dir, ok := c.directories[drive]
	if !ok {
		dir = c.directories[btrieve.DiskDriveDefault]
	}
	return "/" + dir, nil
}

// FileCreate creates a file with its initial indexes.
func (c *Client) FileCreate(attributes btrieve.FileAttributes, indexes []btrieve.IndexAttributes, name string, mode btrieve.CreateMode) error {
	if err := c.valid(); err != nil {
		return err
	}
	return c.db.Create(c.resolve(name), attributes, indexes, mode)
}

// FileOpen opens a file. The owner name is needed when the file has one,
// except for read-only opens of files whose owner mode allows reading.
func (c *Client) FileOpen(name, owner string, mode btrieve.OpenMode) (*File, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}

	shared, err := c.db.Open(c.resolve(name), mode, owner)
	if err != nil {
		return nil, err
	}

	f := &File{
		client: c,
		shared: shared,
		store:  shared.Store,
		mode:   mode,
		index:  btrieve.IndexFirst,
		offset: noOffset,
	}
	c.files = append(c.files, f)

	return f, nil
}

// FileClose closes f. Continuous operation started through f is ended and
// the locks of the session on the file are released.
func (c *Client) FileClose(f *File) error {
	if f.client != c || f.closed {
		return btrieve.StatusFileNotOpen
	}
	if c.transaction != nil && c.transaction.touches(f.shared) {
		return fmt.Errorf("close '%s': %w", f.shared.Name, btrieve.StatusTransactionIsActive)
	}

	var lastErr error
	if f.continuous {
		if err := c.db.ContinuousEnd(f.shared, c.owner.ID); err != nil {
			lastErr = err
		}
		f.continuous = false
	}

	if !c.sharesFile(f) {
		c.db.Locks.ReleaseFile(c.owner.ID, f.shared.Name)
	}

	for i, other := range c.files {
		if other == f {
			c.files = append(c.files[:i], c.files[i+1:]...)
			break
		}
	}
	f.closed = true

	if err := c.db.Close(f.shared); err != nil {
		lastErr = err
	}
	return lastErr
}

// sharesFile reports whether another open handle of the session refers to
// the same file as f.
func (c *Client) sharesFile(f *File) bool {
	for _, other := range c.files {
		if other != f && other.shared == f.shared {
			return true
		}
	}
	return false
}

func (c *Client) FileDelete(name, owner string) error {
	if err := c.valid(); err != nil {
		return err
	}
	return c.db.Delete(c.resolve(name), owner)
}

func (c *Client) FileRename(existing, name string) error {
	if err := c.valid(); err != nil {
		return err
	}
	return c.db.Rename(c.resolve(existing), c.resolve(name))
}

func (c *Client) open(names []string) ([]*File, error) {
	files := []*File{}
	for _, name := range names {
		resolved := c.resolve(strings.TrimSpace(name))
		var found *File
		for _, f := range c.files {
			if f.shared.Name == resolved {
				found = f
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("'%s' is not open: %w", name, btrieve.StatusFileNotOpen)
		}
		files = append(files, found)
	}
	return files, nil
}

// ContinuousOperationBegin puts the named open files in continuous
// operation. Either every file enters it or none does.
func (c *Client) ContinuousOperationBegin(names ...string) error {
	if err := c.valid(); err != nil {
		return err
	}
	files, err := c.open(names)
	if err != nil {
		return err
	}
	for i, f := range files {
		err := c.db.ContinuousBegin(f.shared, c.owner.ID)
		if err != nil {
			for _, started := range files[:i] {
				c.db.ContinuousEnd(started.shared, c.owner.ID)
				started.continuous = false
			}
			return err
		}
		f.continuous = true
	}
	return nil
}

// ContinuousOperationEnd ends continuous operation on the named files.
func (c *Client) ContinuousOperationEnd(names ...string) error {
	if err := c.valid(); err != nil {
		return err
	}
	files, err := c.open(names)
	if err != nil {
		return err
	}
	var lastErr error
	for _, f := range files {
		if err := c.db.ContinuousEnd(f.shared, c.owner.ID); err != nil {
			lastErr = err
			continue
		}
		f.continuous = false
	}
	return lastErr
}

// Continuous runs fn with the named files in continuous operation and
// always ends it, whatever fn returns.
func (c *Client) Continuous(names []string, fn func() error) (err error) {
	if err := c.ContinuousOperationBegin(names...); err != nil {
		return err
	}
	defer func() {
		endErr := c.ContinuousOperationEnd(names...)
		if err == nil {
			err = endErr
		}
	}()
	return fn()
}

// Login authenticates the session with a uri of the form
// btrv://user@host/database?pwd=password.
func (c *Client) Login(uri string) error {
	if err := c.valid(); err != nil {
		return err
	}
	if c.login != "" {
		return btrieve.StatusLoginAlreadyLoggedIn
	}

	user, password, database, err := parseURI(uri)
	if err != nil {
		return err
	}
	if err := c.db.Authenticate(user, password, database); err != nil {
		return err
	}
	c.login = database
	if c.login == "" {
		c.login = "/"
	}
	glog.V(2).Infof("client %d logged in as '%s'", c.owner.ClientIdentifier, user)
	return nil
}

func (c *Client) Logout(uri string) error {
	if err := c.valid(); err != nil {
		return err
	}
	if _, _, _, err := parseURI(uri); err != nil {
		return err
	}
	if c.login == "" {
		return btrieve.StatusLoginLogoutFailed
	}
	c.login = ""
	return nil
}

func parseURI(uri string) (user, password, database string, err error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "btrv" {
		return "", "", "", fmt.Errorf("uri '%s': %w", uri, btrieve.StatusLoginWrongUriFormat)
	}
	if u.User != nil {
		user = u.User.Username()
		password, _ = u.User.Password()
	}
	if pwd := u.Query().Get("pwd"); pwd != "" {
		password = pwd
	}
	database = strings.Trim(u.Path, "/")
	return user, password, database, nil
}

// Reset aborts the running transaction, releases every lock and closes
// every file of the session.
func (c *Client) Reset() error {
	if err := c.valid(); err != nil {
		return err
	}
	return c.reset()
}

func (c *Client) reset() error {
	var lastErr error
	if c.transaction != nil {
		if err := c.TransactionAbort(); err != nil {
			lastErr = err
		}
	}
	for len(c.files) > 0 {
		if err := c.FileClose(c.files[len(c.files)-1]); err != nil {
			lastErr = err
		}
	}
	c.db.Locks.ReleaseAll(c.owner.ID)
	c.login = ""
	return lastErr
}

// Stop resets the session and makes it unusable.
func (c *Client) Stop() error {
	if err := c.valid(); err != nil {
		return err
	}
	err := c.reset()
	c.stopped = true
	return err
}
