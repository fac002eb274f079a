package client

import (
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
)

func TestClient_Identity(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		other := New(db, 7, 9)
		AssertEqual(other.GetServiceAgentIdentifier(), 7)
		AssertEqual(other.GetClientIdentifier(), 9)

		version, err := c.GetVersion(nil)
		AssertNil(err)
		AssertEqual(version.ClientVersion, EngineVersion)
		AssertEqual(version.ClientVersionType, btrieve.VersionTypeClientEngine)
	})
}

func TestClient_Files(t *testing.T) {
	Alternative("Client Files", func(a *A) {
		Environment(func(db *database.Database, c *Client) {

			_, err := c.FileOpen("squares.btr", "", btrieve.OpenModeNormal)
			AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileNotFound)

			f := squares(c)

			a.Alternative("Close twice", func(a *A) {
				AssertNil(c.FileClose(f))
				AssertEqual(btrieve.StatusOf(c.FileClose(f)), btrieve.StatusFileNotOpen)
				_, err := f.RecordRetrieveFirst(0, btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileNotOpen)
			})

			a.Alternative("Rename and delete", func(a *A) {
				AssertEqual(btrieve.StatusOf(c.FileRename("squares.btr", "roots.btr")), btrieve.StatusFileInUse)
				c.FileClose(f)
				AssertNil(c.FileRename("squares.btr", "roots.btr"))

				g, err := c.FileOpen("roots.btr", "", btrieve.OpenModeNormal)
				AssertNil(err)
				AssertEqual(count(g), 256)
				c.FileClose(g)

				AssertNil(c.FileDelete("roots.btr", ""))
				_, err = c.FileOpen("roots.btr", "", btrieve.OpenModeNormal)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileNotFound)
			})

			a.Alternative("Exclusive", func(a *A) {
				_, err := c.FileOpen("squares.btr", "", btrieve.OpenModeExclusive)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileInUse)
			})

			a.Alternative("Information", func(a *A) {
				info, err := f.GetInformation()
				AssertNil(err)
				AssertEqual(info.FileName, "squares.btr")
				AssertEqual(info.RecordCount, 256)
				AssertEqual(info.IndexCount, 1)
				AssertEqual(info.Attributes.FixedRecordLength, 11)
				AssertEqual(info.Indexes[0].UniqueValueCount, 256)
				AssertEqual(info.HandleCount, 1)
				AssertEqual(info.OpenMode, btrieve.OpenModeNormal)
				AssertFalse(info.ContinuousOperation)
				AssertNil(info.LockOwner)
			})
		})
	})
}

func TestClient_Owner(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)

		err := f.SetOwner(btrieve.OwnerModeNoEncryptionReadAllowed, "alice", "alicia")
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidOwner)
		AssertNil(f.SetOwner(btrieve.OwnerModeNoEncryptionReadAllowed, "alice", "alice"))
		c.FileClose(f)

		_, err = c.FileOpen("squares.btr", "", btrieve.OpenModeNormal)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidOwner)
		_, err = c.FileOpen("squares.btr", "bob", btrieve.OpenModeNormal)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidOwner)

		g, err := c.FileOpen("squares.btr", "", btrieve.OpenModeReadOnly)
		AssertNil(err)
		info, _ := g.GetInformation()
		AssertEqual(info.OwnerMode, btrieve.OwnerModeNoEncryptionReadAllowed)
		c.FileClose(g)

		_, err = c.FileOpen("squares.btr", "alice", btrieve.OpenModeNormal)
		AssertNil(err)
	})
}

func TestClient_Directories(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		createSquaresFile(c, "nested/inner.btr")

		dir, err := c.GetCurrentDirectory(btrieve.DiskDriveDefault)
		AssertNil(err)
		AssertEqual(dir, "/")

		err = c.SetCurrentDirectory(btrieve.DiskDriveDefault, "missing")
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusDirectoryError)

		AssertNil(c.SetCurrentDirectory(btrieve.DiskDriveDefault, "nested"))
		dir, _ = c.GetCurrentDirectory(btrieve.DiskDriveDefault)
		AssertEqual(dir, "/nested")

		f, err := c.FileOpen("inner.btr", "", btrieve.OpenModeNormal)
		AssertNil(err)
		AssertEqual(f.Name(), "nested/inner.btr")

		AssertNil(c.SetCurrentDirectory(btrieve.DiskDriveC, "/"))
		_, err = c.FileOpen("C:inner.btr", "", btrieve.OpenModeNormal)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileNotFound)
		g, err := c.FileOpen(`C:\nested\inner.btr`, "", btrieve.OpenModeNormal)
		AssertNil(err)
		AssertEqual(g.Name(), "nested/inner.btr")

		// drives without a directory follow the default one
		dir, _ = c.GetCurrentDirectory(btrieve.DiskDriveD)
		AssertEqual(dir, "/nested")
	})
}

func TestClient_Login(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		AssertEqual(btrieve.StatusOf(c.Login("http://admin@host/demodata")), btrieve.StatusLoginWrongUriFormat)
		AssertEqual(btrieve.StatusOf(c.Login("btrv://admin@host/demodata?pwd=guess")), btrieve.StatusLoginFailedBadPassword)
		AssertEqual(btrieve.StatusOf(c.Login("btrv://root@host/demodata?pwd=secret")), btrieve.StatusLoginFailedBadUsername)
		AssertEqual(btrieve.StatusOf(c.Logout("btrv://admin@host/demodata")), btrieve.StatusLoginLogoutFailed)

		AssertNil(c.Login("btrv://admin@host/demodata?pwd=secret"))
		AssertEqual(btrieve.StatusOf(c.Login("btrv://admin@host/demodata?pwd=secret")), btrieve.StatusLoginAlreadyLoggedIn)
		AssertNil(c.Logout("btrv://admin@host/demodata"))
	})
}

func TestClient_Continuous(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)
		other := New(db, 1, 2)
		defer other.Stop()
		other.FileOpen("squares.btr", "", btrieve.OpenModeNormal)

		AssertEqual(btrieve.StatusOf(c.ContinuousOperationBegin("missing.btr")), btrieve.StatusFileNotOpen)

		AssertNil(c.ContinuousOperationBegin("squares.btr"))
		info, _ := f.GetInformation()
		AssertTrue(info.ContinuousOperation)
		AssertEqual(btrieve.StatusOf(other.ContinuousOperationBegin("squares.btr")), btrieve.StatusIncompatibleModeError)
		AssertEqual(btrieve.StatusOf(other.ContinuousOperationEnd("squares.btr")), btrieve.StatusIncompatibleModeError)
		AssertNil(c.ContinuousOperationEnd("squares.btr"))

		err := c.Continuous([]string{"squares.btr"}, func() error {
			info, _ := f.GetInformation()
			AssertTrue(info.ContinuousOperation)
			_, err := f.RecordCreate(square(16))
			return err
		})
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusDuplicateKeyValue)
		info, _ = f.GetInformation()
		AssertFalse(info.ContinuousOperation)
	})
}

func TestClient_ResetAndStop(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)
		f.RecordRetrieveFirst(0, btrieve.LockModeMultipleNoWait)

		AssertNil(c.TransactionBegin(btrieve.TransactionModeExclusive, btrieve.LockModeNone))
		f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
		AssertNil(f.RecordDelete())

		AssertNil(c.Reset())
		AssertEqual(len(db.Locks.Locks()), 0)
		AssertEqual(btrieve.StatusOf(c.FileClose(f)), btrieve.StatusFileNotOpen)

		g, _ := c.FileOpen("squares.btr", "", btrieve.OpenModeNormal)
		AssertEqual(count(g), 256)

		AssertNil(c.Stop())
		_, err := g.RecordRetrieveFirst(0, btrieve.LockModeNone)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusSessionNoLongerValid)
		_, err = c.FileOpen("squares.btr", "", btrieve.OpenModeNormal)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusSessionNoLongerValid)
		AssertEqual(btrieve.StatusOf(c.TransactionBegin(btrieve.TransactionModeExclusive, btrieve.LockModeNone)), btrieve.StatusSessionNoLongerValid)
	})
}
