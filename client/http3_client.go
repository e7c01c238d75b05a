package client

import (
	"crypto/tls"
	"net/http"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"vaultd/config"
)

// 创建 HTTP/3 客户端。节点用自签名证书，这里不校验证书链。
func createHttp3Client(cfg *config.Config) *http.Client {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS13,
		MaxVersion:         tls.VersionTLS13,
		ClientSessionCache: tls.NewLRUClientSessionCache(128),
		NextProtos:         []string{http3.NextProtoH3},
	}

	tr := &http3.Transport{
		TLSClientConfig: tlsCfg,
		QUICConfig: &quic.Config{
			KeepAlivePeriod: cfg.Server.QUICKeepAlivePeriod,
			MaxIdleTimeout:  cfg.Server.QUICMaxIdleTimeout,
		},
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Server.HTTPTimeout,
	}
}

// NewHTTP3Client 连接 vaultd 的 HTTP/3 API，baseURL 形如 https://127.0.0.1:8443
func NewHTTP3Client(baseURL string, cfg *config.Config) *Client {
	return New(baseURL, createHttp3Client(cfg))
}
