package handler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const maxUploadSize = 10 << 20

// 允许上传的类型及对应扩展名，按内容嗅探结果判断
var uploadExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
}

// UploadMedia 保存上传的媒体文件，返回引用、访问地址与图片尺寸
func (a *API) UploadMedia(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, kindValidation, "file_required", map[string]string{"file": "This field is required."})
		return
	}
	if fileHeader.Size > maxUploadSize {
		respondMessage(c, http.StatusBadRequest, kindValidation, "unsupported_file", map[string]string{"file": "File exceeds the 10MB limit."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondMessage(c, http.StatusBadRequest, kindValidation, "file_required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil || len(data) == 0 || len(data) > maxUploadSize {
		respondMessage(c, http.StatusBadRequest, kindValidation, "unsupported_file", nil)
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := uploadExtensions[contentType]
	if !ok {
		respondMessage(c, http.StatusBadRequest, kindValidation, "unsupported_file", map[string]string{"file": "Unsupported file type " + contentType + "."})
		return
	}

	response := gin.H{"content_type": contentType, "size": len(data)}
	if contentType != "video/mp4" {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			respondMessage(c, http.StatusBadRequest, kindValidation, "unsupported_file", map[string]string{"file": "Upload a valid image."})
			return
		}
		response["width"] = cfg.Width
		response["height"] = cfg.Height
	}

	key := fmt.Sprintf("uploads/%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	url, err := a.storage.Save(c.Request.Context(), key, bytes.NewReader(data), contentType)
	if err != nil {
		log.Printf("[upload] save %s failed: %v", key, err)
		respondMessage(c, http.StatusInternalServerError, kindInternal, "upload_failed", nil)
		return
	}

	response["file"] = key
	response["url"] = a.absoluteURL(c, url)
	c.JSON(http.StatusCreated, response)
}
