package store

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/talkincode/toughkiosk/config"
)

// AssetStore uploads binary assets referenced by the document and returns
// their public URL.
type AssetStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// AssetUploadFunc adapts a function to AssetStore, used in tests.
type AssetUploadFunc func(ctx context.Context, name string, data []byte) (string, error)

func (f AssetUploadFunc) Upload(ctx context.Context, name string, data []byte) (string, error) {
	return f(ctx, name, data)
}

// SftpAssetStore stores assets on the hub file server over SFTP. A
// connection is dialed per upload; imports are infrequent enough that
// holding a session open buys nothing.
type SftpAssetStore struct {
	cfg config.AssetsConfig
}

func NewSftpAssetStore(cfg config.AssetsConfig) *SftpAssetStore {
	return &SftpAssetStore{cfg: cfg}
}

func (s *SftpAssetStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if s.cfg.SftpHost == "" {
		return "", errors.New("asset store not configured")
	}

	conn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", s.cfg.SftpHost, s.cfg.SftpPort), &ssh.ClientConfig{
		User:            s.cfg.SftpUser,
		Auth:            []ssh.AuthMethod{ssh.Password(s.cfg.SftpPasswd)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // hub file server on a private network
		Timeout:         10 * time.Second,
	})
	if err != nil {
		return "", errors.Wrap(err, "asset store dial")
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return "", errors.Wrap(err, "sftp session")
	}
	defer client.Close()

	dir := path.Join(s.cfg.SftpBasedir, time.Now().Format("200601"))
	if err := client.MkdirAll(dir); err != nil {
		return "", errors.Wrap(err, "asset dir")
	}

	target := path.Join(dir, name)
	f, err := client.Create(target)
	if err != nil {
		return "", errors.Wrap(err, "create asset")
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", errors.Wrap(err, "write asset")
	}

	return s.cfg.PublicBaseURL + "/" + time.Now().Format("200601") + "/" + name, nil
}
