//Package remote contains RemoteOperation adapters for real mutation
//backends.
package remote

import (
	"context"
	"fmt"
	"net/textproto"
	"path"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/renamekit/renamebatch"
)

//FTPRenamer RemoteOperation adapter that renames entries on an FTP
//server. Item IDs are names relative to Dir. A fresh connection is
//made per call and closed afterwards.
type FTPRenamer struct {
	Host        string
	Port        int
	User        string
	Password    string
	Dir         string
	ConnTimeout time.Duration
}

func (r *FTPRenamer) connect() (*ftp.ServerConn, error) {
	c, err := ftp.DialTimeout(fmt.Sprintf("%s:%d", r.Host, r.Port), r.ConnTimeout)
	if err != nil {
		return nil, renamebatch.WrapBatchError(renamebatch.ErrCodeTransient, err, "ftp dial failed")
	}
	if err = c.Login(r.User, r.Password); err != nil {
		c.Quit()
		return nil, renamebatch.WrapBatchError(renamebatch.ErrCodePermission, err, "ftp login failed")
	}
	return c, nil
}

//Rename implements renamebatch.RemoteOperation
func (r *FTPRenamer) Rename(ctx context.Context, itemID, newName string) (string, error) {
	c, err := r.connect()
	if err != nil {
		return "", err
	}
	defer c.Quit()

	from := path.Join(r.Dir, itemID)
	to := path.Join(r.Dir, newName)
	if err = c.Rename(from, to); err != nil {
		return "", classify(err, itemID)
	}
	return newName, nil
}

//Exists implements renamebatch.ExistenceChecker by probing the file
//size, the same trick the server answers cheaply for both files and
//missing names
func (r *FTPRenamer) Exists(ctx context.Context, name string) (bool, error) {
	c, err := r.connect()
	if err != nil {
		return false, err
	}
	defer c.Quit()

	_, err = c.FileSize(path.Join(r.Dir, name))
	if err == nil {
		return true, nil
	}
	if e, ok := err.(*textproto.Error); ok && e.Code == ftp.StatusFileUnavailable {
		return false, nil
	}
	return false, renamebatch.WrapBatchError(renamebatch.ErrCodeTransient, err, "ftp size probe failed for:%v", name)
}

//classify map FTP reply codes onto the batch error taxonomy: 4xx
//replies are transient by protocol definition, 550 means the source
//is unavailable, everything else is terminal.
func classify(err error, itemID string) error {
	if e, ok := err.(*textproto.Error); ok {
		switch {
		case e.Code == ftp.StatusFileUnavailable:
			return renamebatch.WrapBatchError(renamebatch.ErrCodeNotFound, err, "item not found:%v", itemID)
		case e.Code >= 400 && e.Code < 500:
			return renamebatch.WrapBatchError(renamebatch.ErrCodeTransient, err, "ftp rename temporarily failed for:%v", itemID)
		case e.Code == ftp.StatusBadFileName:
			return renamebatch.WrapBatchError(renamebatch.ErrCodeConflict, err, "ftp rejected target name for:%v", itemID)
		}
	}
	return renamebatch.WrapBatchError(renamebatch.ErrCodeGeneral, err, "ftp rename failed for:%v", itemID)
}
