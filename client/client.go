package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"vaultd/handlers"
	"vaultd/pda"
	"vaultd/types"
	"vaultd/vm"
)

// Client vaultd API 客户端
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// Close 释放底层 QUIC 连接
func (c *Client) Close() error {
	if cl, ok := c.HTTP.Transport.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

// SubmitTx 提交已签名交易。执行失败（FAILED）不返回 error，看 Status / Code。
func (c *Client) SubmitTx(ctx context.Context, tx *vm.Tx) (*handlers.TxResponse, error) {
	body, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}
	var out handlers.TxResponse
	if err := c.do(ctx, "SubmitTx", http.MethodPost, "/tx", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetVault(ctx context.Context, authority types.Pubkey) (*handlers.VaultResponse, error) {
	var out handlers.VaultResponse
	q := url.Values{"authority": {authority.String()}}
	if err := c.do(ctx, "GetVault", http.MethodGet, "/vault", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAccount(ctx context.Context, addr types.Pubkey) (*handlers.AccountResponse, error) {
	var out handlers.AccountResponse
	q := url.Values{"address": {addr.String()}}
	if err := c.do(ctx, "GetAccount", http.MethodGet, "/account", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReceipt(ctx context.Context, txID string) (*vm.Receipt, error) {
	var out vm.Receipt
	q := url.Values{"tx_id": {txID}}
	if err := c.do(ctx, "GetReceipt", http.MethodGet, "/receipt", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEvents 从 (fromSlot, fromIndex) 开始；limit<=0 时用服务端默认值
func (c *Client) ListEvents(ctx context.Context, fromSlot uint64, fromIndex uint32, limit int) (*handlers.EventsResponse, error) {
	var out handlers.EventsResponse
	q := url.Values{
		"from_slot":  {strconv.FormatUint(fromSlot, 10)},
		"from_index": {strconv.FormatUint(uint64(fromIndex), 10)},
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if err := c.do(ctx, "ListEvents", http.MethodGet, "/events", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Derive(ctx context.Context, authority types.Pubkey) (*pda.VaultAddresses, error) {
	var out pda.VaultAddresses
	q := url.Values{"authority": {authority.String()}}
	if err := c.do(ctx, "Derive", http.MethodGet, "/derive", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context) (*handlers.StatusResponse, error) {
	var out handlers.StatusResponse
	if err := c.do(ctx, "Status", http.MethodGet, "/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body []byte, out interface{}) error {
	target := c.BaseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		e := &HTTPStatusError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var er handlers.ErrorResponse
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			e.Code, e.Message = er.Code, er.Error
		}
		return e
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	// 完全读取 response body，确保连接可复用
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
