package letterboxd

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/codes"
)

// DownloadExport fetches the account's bulk CSV export, unpacks it
// under destDir and removes the archive. It returns the directory the
// CSVs were extracted into.
func (c *Client) DownloadExport(ctx context.Context, destDir string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:DownloadExport")
	defer span.End()

	if !c.Session.Authenticated() {
		return "", fmt.Errorf("%w: export requires a logged in session", ErrAuthentication)
	}

	res, err := c.Session.Http.R().
		SetContext(ctx).
		Get(exportEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export request failed")
		return "", fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "export request rejected")
		return "", fmt.Errorf("%w: status %d from %s", ErrConnection, res.StatusCode(), exportEndpoint)
	}
	if !strings.Contains(res.Header().Get("content-type"), "application/zip") {
		span.SetStatus(codes.Error, "export is not a zip")
		return "", fmt.Errorf(
			"%w: expected a zip export, got content type %q",
			ErrConnection, res.Header().Get("content-type"),
		)
	}

	filename := dispositionFilename(res.Header().Get("content-disposition"))
	if filename == "" {
		span.SetStatus(codes.Error, "export filename missing")
		return "", fmt.Errorf("%w: no filename in content disposition", ErrConnection)
	}

	err = os.MkdirAll(destDir, 0o755)
	if err != nil {
		return "", err
	}

	archivePath := filepath.Join(destDir, filename)
	err = os.WriteFile(archivePath, res.Body(), 0o644)
	if err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	extractDir := filepath.Join(destDir, strings.TrimSuffix(filename, filepath.Ext(filename)))
	err = extractZip(archivePath, extractDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract export")
		return "", err
	}

	slog.InfoContext(ctx, "export downloaded", "dir", extractDir)
	return extractDir, nil
}

func dispositionFilename(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	err = os.MkdirAll(destDir, 0o755)
	if err != nil {
		return err
	}

	for _, file := range reader.File {
		target := filepath.Join(destDir, file.Name)
		// reject entries escaping the destination
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", file.Name)
		}

		if file.FileInfo().IsDir() {
			err = os.MkdirAll(target, 0o755)
			if err != nil {
				return err
			}
			continue
		}

		err = os.MkdirAll(filepath.Dir(target), 0o755)
		if err != nil {
			return err
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		dst, err := os.Create(target)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
