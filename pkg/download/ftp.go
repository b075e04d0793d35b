package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jlaffaye/ftp"
)

const (
	geoHost          = "ftp.ncbi.nlm.nih.gov:21"
	arrayExpressHost = "ftp.ebi.ac.uk:21"

	anonymousUser = "anonymous"
	anonymousPass = "anonymous"
)

var (
	gsePattern          = regexp.MustCompile(`^GSE[0-9]{3,}$`)
	arrayExpressPattern = regexp.MustCompile(`^E-[A-Z]{4}-[0-9]+$`)
)

// GEOSupplementary downloads all supplementary files of a GEO series (e.g.
// "GSE25134") from the NCBI FTP server into dir, creating dir if needed.
func GEOSupplementary(ctx context.Context, gseID, dir string) error {
	if !gsePattern.MatchString(gseID) {
		return fmt.Errorf("invalid GEO series accession %q", gseID)
	}
	return fetchDir(ctx, geoHost, geoSupplementaryDir(gseID), dir)
}

// ArrayExpress downloads all files of an ArrayExpress / BioStudies dataset
// (e.g. "E-MTAB-7143") from the EBI FTP server into dir, creating dir if
// needed.
func ArrayExpress(ctx context.Context, accession, dir string) error {
	if !arrayExpressPattern.MatchString(accession) {
		return fmt.Errorf("invalid ArrayExpress accession %q", accession)
	}
	return fetchDir(ctx, arrayExpressHost, arrayExpressDir(accession), dir)
}

// geoSupplementaryDir maps a series accession to its GEO FTP directory, e.g.
// GSE25134 → /geo/series/GSE25nnn/GSE25134/suppl/.
func geoSupplementaryDir(gseID string) string {
	return fmt.Sprintf("/geo/series/%snnn/%s/suppl/", gseID[:len(gseID)-3], gseID)
}

// arrayExpressDir maps an accession to its BioStudies FTP directory, keyed by
// the accession's last three digits.
func arrayExpressDir(accession string) string {
	return fmt.Sprintf("/biostudies/fire/E-MTAB-/%s/%s/Files", accession[len(accession)-3:], accession)
}

// fetchDir downloads every file listed in remoteDir on host into localDir.
func fetchDir(ctx context.Context, host, remoteDir, localDir string) error {
	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", host, err)
	}
	defer conn.Quit()

	if err := conn.Login(anonymousUser, anonymousPass); err != nil {
		return fmt.Errorf("logging in to %s: %w", host, err)
	}
	if err := conn.ChangeDir(remoteDir); err != nil {
		return fmt.Errorf("changing to %s on %s: %w", remoteDir, host, err)
	}
	names, err := conn.NameList("")
	if err != nil {
		return fmt.Errorf("listing %s on %s: %w", remoteDir, host, err)
	}

	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", localDir, err)
	}
	for _, name := range names {
		if err := fetchFile(conn, name, filepath.Join(localDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func fetchFile(conn *ftp.ServerConn, remote, local string) error {
	r, err := conn.Retr(remote)
	if err != nil {
		return fmt.Errorf("retrieving %s: %w", remote, err)
	}
	defer r.Close()

	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("creating %s: %w", local, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", local, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", local, err)
	}
	return nil
}
