package service

import (
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/lock"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/queue"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/search"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

type Services struct {
	stores   store.Provider
	txRunner store.TxRunner
	engine   *clustering.Engine
	locker   lock.Locker
	search   *search.Service
	producer queue.Producer
}

func NewServices(stores store.Provider, txRunner store.TxRunner, engine *clustering.Engine, locker lock.Locker, searcher *search.Service, producer queue.Producer) *Services {
	return &Services{
		stores:   stores,
		txRunner: txRunner,
		engine:   engine,
		locker:   locker,
		search:   searcher,
		producer: producer,
	}
}

func (s *Services) Debate() DebateService {
	return NewDebateService(s.stores, s.engine, s.locker, s.search, s.producer)
}

func (s *Services) Admin() AdminService {
	return NewAdminService(s.stores, s.txRunner, s.engine, s.locker, s.search)
}
