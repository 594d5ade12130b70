package server

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 5 << 20

// readImageUpload pulls the optional "image" file out of a multipart
// form. It returns the original filename and raw bytes, or an empty
// filename when no file was attached. A non-empty errMsg means the file
// was present but unusable.
func readImageUpload(c *fiber.Ctx) (name string, content []byte, errMsg string) {
	fh, err := c.FormFile("image")
	if err != nil {
		// Missing file is fine; the field is optional.
		return "", nil, ""
	}
	if fh.Size > maxImageBytes {
		return "", nil, "Image must be 5MB or smaller"
	}
	src, err := fh.Open()
	if err != nil {
		return "", nil, "Could not read uploaded file"
	}
	defer src.Close()

	content, err = io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil {
		return "", nil, "Could not read uploaded file"
	}
	if len(content) > maxImageBytes {
		return "", nil, "Image must be 5MB or smaller"
	}
	if _, _, err := image.Decode(bytes.NewReader(content)); err != nil {
		return "", nil, "File is not a supported image (jpeg, png, gif, webp)"
	}
	return fh.Filename, content, ""
}
