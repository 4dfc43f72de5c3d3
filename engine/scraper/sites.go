package scraper

import (
	"log/slog"
	"time"

	"github.com/UzMarketAI/scout-mvp/engine/domain"
)

// Selector lists are redundant on purpose: the marketplaces ship frontend
// changes often, so each site carries current and recent-past selectors.

var uzumSite = site{
	marketplace:  domain.Uzum,
	baseURL:      "https://uzum.uz",
	searchFormat: "/search?query=%s",
	waitSelector: `[data-test-id="product-card"], .product-card, a[href*="/product/"]`,
	settle:       2 * time.Second,
	extractionJS: `(() => {
		const cards = document.querySelectorAll(
			'[data-test-id="product-card"], .product-card, .card-wrapper a[href*="/product/"]'
		);
		const results = [];
		for (const card of cards) {
			const link = card.closest('a') || card.querySelector('a');
			const titleEl = card.querySelector(
				'[data-test-id="product-title"], .product-card__title, .subtitle-item, span'
			);
			const priceEl = card.querySelector(
				'[data-test-id="product-price"], .product-card__price, .price'
			);
			const imgEl = card.querySelector('img');
			results.push({
				title: titleEl ? titleEl.innerText.trim() : '',
				price_str: priceEl ? priceEl.innerText.trim() : '',
				href: link ? (link.getAttribute('href') || '') : '',
				img: imgEl ? (imgEl.src || imgEl.dataset.src || '') : '',
			});
		}
		return results;
	})()`,
}

var asaxiySite = site{
	marketplace:  domain.Asaxiy,
	baseURL:      "https://asaxiy.uz",
	searchFormat: "/product?key=%s",
	waitSelector: `.product__item, .product-card, a[href*="/product/"]`,
	settle:       1500 * time.Millisecond,
	extractionJS: `(() => {
		const cards = document.querySelectorAll(
			'.product__item, .product-card, .col-6.col-xl-3.col-md-4'
		);
		const results = [];
		for (const card of cards) {
			const link = card.querySelector('a[href*="/product/"]');
			const titleEl = card.querySelector(
				'.product__item__info a, .product-title, .goods-name, a[href*="/product/"]'
			);
			const priceEl = card.querySelector(
				'.product__item-price, .price, .product-price'
			);
			const imgEl = card.querySelector('img');
			results.push({
				title: titleEl ? titleEl.innerText.trim() : '',
				price_str: priceEl ? priceEl.innerText.trim() : '',
				href: link ? (link.getAttribute('href') || '') : '',
				img: imgEl ? (imgEl.src || imgEl.dataset.src || '') : '',
			});
		}
		return results;
	})()`,
}

var olchaSite = site{
	marketplace:  domain.Olcha,
	baseURL:      "https://olcha.uz",
	searchFormat: "/search?query=%s",
	waitSelector: `.product-card, .product-listing__item`,
	settle:       1500 * time.Millisecond,
	extractionJS: `(() => {
		const cards = document.querySelectorAll(
			'.product-card, .product-card._md, .product-listing__item'
		);
		const results = [];
		for (const card of cards) {
			const link = card.querySelector('a[href]') || card.closest('a');
			const titleEl = card.querySelector(
				'.product-card__brand .goods-name, .product-card__title, .product-name'
			);
			const priceEl = card.querySelector('.price, .product-card__price');
			const imgEl = card.querySelector('img');
			results.push({
				title: titleEl
					? titleEl.innerText.trim()
					: (link ? link.innerText.trim().split('\n')[0] : ''),
				price_str: priceEl ? priceEl.innerText.trim() : '',
				href: link ? (link.getAttribute('href') || '') : '',
				img: imgEl ? (imgEl.src || imgEl.dataset.src || '') : '',
			});
		}
		return results;
	})()`,
}

// NewUzum builds the uzum.uz source worker.
func NewUzum(opts Options, logger *slog.Logger) *Scraper {
	return newScraper(uzumSite, opts, logger)
}

// NewAsaxiy builds the asaxiy.uz source worker.
func NewAsaxiy(opts Options, logger *slog.Logger) *Scraper {
	return newScraper(asaxiySite, opts, logger)
}

// NewOlcha builds the olcha.uz source worker.
func NewOlcha(opts Options, logger *slog.Logger) *Scraper {
	return newScraper(olchaSite, opts, logger)
}

// All builds every supported source in priority order.
func All(opts Options, logger *slog.Logger) []Source {
	return []Source{
		NewUzum(opts, logger),
		NewAsaxiy(opts, logger),
		NewOlcha(opts, logger),
	}
}
